package events

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves /api/events.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listForCadet)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", h.listForAdmin)
		r.Post("/", h.create)
		r.Put("/{eventId}", h.update)
		r.Delete("/{eventId}", h.delete)
	})
}

func (h *Handler) listForCadet(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForCadet(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list cadet events", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching events.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listForAdmin(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForAdmin(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list admin events", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching events.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	id, err := h.service.Create(r.Context(), shared.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.logger.Error("create event", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating event.")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"msg": "Event created and notifications sent.", "event_id": id})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "eventId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Event not found or unauthorized.")
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if err := h.service.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, in); err != nil {
		h.logger.Error("update event", slog.Int64("event_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating event.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Event updated and notifications sent.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "eventId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Event not found or unauthorized.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete event", slog.Int64("event_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting event.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Event deleted and notifications sent.")
}
