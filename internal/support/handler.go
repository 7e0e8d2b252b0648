package support

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// Handler serves the support desk.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /api/support-queries.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/user", h.mine)
	r.Get("/admin", h.forUnit)
	r.Put("/admin/{queryId}", h.reply)
	r.Delete("/admin/{queryId}", h.deleteForUnit)
}

// MountMasterRoutes registers /api/master/support-queries.
func (h *Handler) MountMasterRoutes(r chi.Router) {
	r.Get("/", h.all)
	r.Delete("/{queryId}", h.delete)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Message is required.")
		return
	}
	if _, err := h.service.Submit(r.Context(), shared.PrincipalFromContext(r.Context()), req.Message); err != nil {
		h.logger.Error("submit support query", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while creating query.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Query submitted successfully.")
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Mine(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list own support queries", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching queries.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) forUnit(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ForUnit(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list unit support queries", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching all queries.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "queryId")
	if !ok {
		httpx.RespondError(w, errQueryNotFound, "")
		return
	}
	var req struct {
		Response string `json:"response"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Msg(w, http.StatusBadRequest, "Response text is required.")
		return
	}
	if err := h.service.Reply(r.Context(), shared.PrincipalFromContext(r.Context()), id, req.Response); err != nil {
		h.logger.Error("reply to support query", slog.Int64("query_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while updating query.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Response saved and notification sent.")
}

func (h *Handler) deleteForUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "queryId")
	if !ok {
		httpx.RespondError(w, errQueryNotFound, "")
		return
	}
	if err := h.service.DeleteForUnit(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete support query", slog.Int64("query_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting query.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Query deleted successfully.")
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.All(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("list support queries", slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while fetching support queries.")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IDParam(r, "queryId")
	if !ok {
		httpx.RespondError(w, errQueryNotFound, "")
		return
	}
	if err := h.service.Delete(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.logger.Error("delete support query", slog.Int64("query_id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Database error while deleting query.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Support query deleted.")
}
