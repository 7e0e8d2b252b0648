package fallin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves /api/fallin.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers fall-in routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/userfallin", h.listForCadet)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing required fields: date, time, or dress_code.")
		return
	}
	id, err := h.service.Create(r.Context(), shared.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.logger.Error("create fallin", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating fallin.")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"msg": "Fallin created and notifications sent.", "fallin_id": id})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list fallins", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching fallins.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listForCadet(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForCadet(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list cadet fallins", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching fallins.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Fallin not found or not authorized.")
		return
	}
	f, err := h.service.Get(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("get fallin", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching fallin.")
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Fallin not found.")
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing required fields: date, time, or dress_code.")
		return
	}
	if err := h.service.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, in); err != nil {
		h.logger.Error("update fallin", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating fallin.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Fallin updated and notifications sent.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Fallin not found.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete fallin", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting fallin.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Fallin deleted and notifications sent.")
}
