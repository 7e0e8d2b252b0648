package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves /api/master/platform-config.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers platform config routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{configId}", h.update)
	r.Delete("/{configId}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list platform config", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching config.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "cfg_key and cfg_value are required.")
		return
	}
	if _, err := h.service.Create(r.Context(), shared.PrincipalFromContext(r.Context()), in); err != nil {
		h.logger.Error("create platform config", slog.String("cfg_key", in.Key), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating config.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Configuration created.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "configId")
	if !ok {
		httpx.RespondError(w, errNotFound, "")
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "cfg_value is required.")
		return
	}
	if err := h.service.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, in); err != nil {
		h.logger.Error("update platform config", slog.Int64("config_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating config.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Configuration updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "configId")
	if !ok {
		httpx.RespondError(w, errNotFound, "")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete platform config", slog.Int64("config_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting config.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Configuration deleted.")
}
