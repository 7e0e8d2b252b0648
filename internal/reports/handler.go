package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves admin reports, system reports and global search.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers /api/admin/reports.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.userCounts)
	r.Get("/events-count", h.fallinCount)
	r.Get("/attendance-summary", h.attendanceSummary)
	r.Get("/attendance-details", h.attendanceDetails)
}

// MountSystemRoutes registers /api/master/system-reports.
func (h *Handler) MountSystemRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/attendance-trends", h.trends)
}

// MountSearchRoutes registers /api/master/global-search.
func (h *Handler) MountSearchRoutes(r chi.Router) {
	r.Get("/", h.search)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusOf(err) == http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err, "Server error")
}

func (h *Handler) userCounts(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.UserCounts(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "report user counts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) fallinCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.FallinCount(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "report fallin count", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"totalEvents": n})
}

func (h *Handler) attendanceSummary(w http.ResponseWriter, r *http.Request) {
	avg, err := h.service.AttendanceAverage(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "report attendance summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"avgAttendance": avg})
}

func (h *Handler) attendanceDetails(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AttendanceDetails(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "report attendance details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.SystemSummary(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "system summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AttendanceTrends(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.fail(w, "attendance trends", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Search(r.Context(), shared.PrincipalFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, "global search", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
