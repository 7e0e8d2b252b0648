package attendance

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves /api/attendance.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fallins", h.listFallins)
	r.Get("/students/{fallinId}", h.eligibleCadets)
	r.Post("/mark/{fallinId}", h.mark)
	r.Get("/view/{fallinId}", h.view)
	r.Get("/{attendanceId}", h.get)
	r.Put("/{attendanceId}", h.update)
	r.Delete("/{attendanceId}", h.delete)
}

func (h *Handler) listFallins(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListFallins(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list attendance fallins", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching fallins.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) eligibleCadets(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "fallinId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Fallin not found.")
		return
	}
	list, err := h.service.EligibleCadets(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("list eligible cadets", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching cadets.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type markRequest struct {
	Records []Mark `json:"records"`
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "fallinId")
	if !ok {
		httpx.Msg(w, http.StatusForbidden, "Not authorized for this fallin.")
		return
	}
	var req markRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "No attendance records provided.")
		return
	}
	if err := h.service.Mark(r.Context(), shared.PrincipalFromContext(r.Context()), id, req.Records); err != nil {
		h.logger.Error("mark attendance", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while marking attendance.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Attendance recorded successfully.")
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "fallinId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Fallin not found.")
		return
	}
	rows, err := h.service.View(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("view attendance", slog.Int64("fallin_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching attendance.")
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "attendanceId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Attendance record not found.")
		return
	}
	rec, err := h.service.Get(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("get attendance", slog.Int64("attendance_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching attendance.")
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "attendanceId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Attendance record not found.")
		return
	}
	var c Change
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing required field: status.")
		return
	}
	if err := h.service.Update(r.Context(), shared.PrincipalFromContext(r.Context()), id, c); err != nil {
		h.logger.Error("update attendance", slog.Int64("attendance_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating attendance.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Attendance record updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "attendanceId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Attendance record not found.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete attendance", slog.Int64("attendance_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting attendance.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Attendance record deleted.")
}
