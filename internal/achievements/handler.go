package achievements

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// FormParser parses size-limited multipart bodies.
type FormParser interface {
	ParseForm(w http.ResponseWriter, r *http.Request) error
}

// Handler serves /api/achievements.
type Handler struct {
	logger  *slog.Logger
	service *Service
	forms   FormParser
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, forms FormParser) *Handler {
	return &Handler{logger: logger, service: service, forms: forms}
}

// MountRoutes registers achievement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listForCadet)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", h.listForAdmin)
		r.Post("/", h.create)
		r.Delete("/{achievementId}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var (
		in    Input
		image *multipart.FileHeader
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := h.forms.ParseForm(w, r); err != nil {
			httpx.RespondError(w, err, "Database error while creating achievement.")
			return
		}
		in.Title = r.FormValue("title")
		in.Description = r.FormValue("description")
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			image = files[0]
		}
	} else if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Title is required.")
		return
	}

	id, err := h.service.Create(r.Context(), shared.PrincipalFromContext(r.Context()), in, image)
	if err != nil {
		h.logger.Error("create achievement", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating achievement.")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"msg":            "Achievement posted successfully and notifications sent.",
		"achievement_id": id,
	})
}

func (h *Handler) listForAdmin(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForAdmin(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list admin achievements", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching achievements.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listForCadet(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForCadet(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list cadet achievements", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching achievements.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "achievementId")
	if !ok {
		httpx.Msg(w, http.StatusNotFound, "Achievement not found or not under your ANO.")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete achievement", slog.Int64("achievement_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting achievement.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Achievement deleted and notifications sent.")
}
