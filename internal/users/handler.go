package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler manages account management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountUnitRoutes registers /api/admin/manage-users.
func (h *Handler) MountUnitRoutes(r chi.Router) {
	r.Get("/", h.listUnitCadets)
	r.Put("/approve/{userId}", h.approve)
	r.Delete("/{userId}", h.reject)
}

// MountCadetRoutes registers /api/master/manage-users.
func (h *Handler) MountCadetRoutes(r chi.Router) {
	r.Get("/", h.listCadets)
	r.Put("/{regimentalNumber}/enable", h.setCadetEnabled(true))
	r.Put("/{regimentalNumber}/disable", h.setCadetEnabled(false))
	r.Delete("/{regimentalNumber}", h.deleteCadet)
}

// MountAdminRoutes registers /api/master/manage-admins.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.listAdmins)
	r.Put("/{anoId}/enable", h.setAdminEnabled(true))
	r.Put("/{anoId}/disable", h.setAdminEnabled(false))
	r.Delete("/{anoId}", h.deleteAdmin)
}

func (h *Handler) listUnitCadets(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.UnitCadets(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list unit cadets", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching users.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "userId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, errCadetNotInUnit.Error())
		return
	}
	if err := h.service.Approve(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("approve cadet", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while approving cadet.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Cadet approved and notification sent.")
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "userId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, errCadetNotInUnit.Error())
		return
	}
	if err := h.service.Reject(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("reject cadet", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting cadet.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Cadet deleted and notification sent.")
}

func (h *Handler) listCadets(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AllCadets(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list cadets", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching cadets.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) setCadetEnabled(enabled bool) http.HandlerFunc {
	verb, done := "disabling", "Cadet disabled."
	if enabled {
		verb, done = "enabling", "Cadet enabled."
	}
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "regimentalNumber")
		if err := h.service.SetCadetEnabled(r.Context(), shared.PrincipalFromContext(r.Context()), number, enabled); err != nil {
			h.logger.Error("set cadet approval", slog.String("regimental_number", number), slog.Bool("enabled", enabled), slog.Any("error", err))
			httpx.RespondError(w, err, "Database error while "+verb+" cadet.")
			return
		}
		httpx.Msg(w, http.StatusOK, done)
	}
}

func (h *Handler) deleteCadet(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "regimentalNumber")
	if err := h.service.DeleteCadet(r.Context(), shared.PrincipalFromContext(r.Context()), number); err != nil {
		h.logger.Error("delete cadet", slog.String("regimental_number", number), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting cadet.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Cadet deleted.")
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Admins(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list admins", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching admins.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) setAdminEnabled(enabled bool) http.HandlerFunc {
	verb, done := "disabling", "Admin disabled."
	if enabled {
		verb, done = "enabling", "Admin enabled."
	}
	return func(w http.ResponseWriter, r *http.Request) {
		unitID := chi.URLParam(r, "anoId")
		if err := h.service.SetAdminEnabled(r.Context(), shared.PrincipalFromContext(r.Context()), unitID, enabled); err != nil {
			h.logger.Error("set admin approval", slog.String("ano_id", unitID), slog.Bool("enabled", enabled), slog.Any("error", err))
			httpx.RespondError(w, err, "Database error while "+verb+" admin.")
			return
		}
		httpx.Msg(w, http.StatusOK, done)
	}
}

func (h *Handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	unitID := chi.URLParam(r, "anoId")
	if err := h.service.DeleteAdmin(r.Context(), shared.PrincipalFromContext(r.Context()), unitID); err != nil {
		h.logger.Error("delete admin", slog.String("ano_id", unitID), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting admin.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Admin deleted.")
}
