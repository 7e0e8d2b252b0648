package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves the cadet inbox and the super-admin broadcast manager.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers cadet routes under /api/notifications.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/user", h.listMine)
	r.Put("/{id}/read", h.markRead)
}

// MountManagerRoutes registers routes under /api/master/notification-manager.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Get("/", h.listBroadcasts)
	r.Post("/", h.createBroadcast)
	r.Delete("/{id}", h.deleteBroadcast)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMine(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching notifications.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Notification not found.")
		return
	}
	if err := h.service.MarkRead(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("mark notification read", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating notification.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Notification marked as read.")
}

func (h *Handler) listBroadcasts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBroadcasts(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list broadcasts", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching notifications.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) createBroadcast(w http.ResponseWriter, r *http.Request) {
	var in BroadcastInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	id, err := h.service.CreateBroadcast(r.Context(), shared.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.logger.Error("create broadcast", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating notification.")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"msg": "Notification created.", "notification_id": id})
}

func (h *Handler) deleteBroadcast(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "id")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Notification not found.")
		return
	}
	if err := h.service.DeleteBroadcast(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete broadcast", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting notification.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Notification deleted.")
}
