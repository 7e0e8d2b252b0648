package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler exposes the super-admin system log viewer.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes under /api/master/system-logs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	result, err := h.service.List(r.Context(), shared.PrincipalFromContext(r.Context()), Filters{
		UserType: q.Get("user_type"),
		Action:   q.Get("action"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		h.logger.Error("list system logs", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error.")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
