package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// FileStore keeps uploaded profile pictures.
type FileStore interface {
	ParseForm(w http.ResponseWriter, r *http.Request) error
	SaveField(r *http.Request, field string) (string, error)
	Remove(name string) error
	Path(name string) string
}

const pictureField = "profile_pic"

// Handler serves the profile endpoints of all three roles.
type Handler struct {
	logger  *slog.Logger
	service *Service
	files   FileStore
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, files FileStore) *Handler {
	return &Handler{logger: logger, service: service, files: files}
}

// MountCadetRoutes registers /api/users.
func (h *Handler) MountCadetRoutes(r chi.Router) {
	r.Use(only(shared.RoleCadet))
	r.Get("/profile", h.cadetProfile)
	r.Post("/update-profile", h.updateCadet)
	h.mountPicture(r)
}

// MountAdminRoutes registers the profile part of /api/admin.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Use(only(shared.RoleAdmin))
	r.Get("/profile", h.adminProfile)
	r.Post("/update-admin-profile", h.updateAdmin)
	h.mountPicture(r)
}

// MountMasterRoutes registers the profile part of /api/master.
func (h *Handler) MountMasterRoutes(r chi.Router) {
	r.Use(only(shared.RoleMaster))
	r.Get("/profile", h.masterProfile)
	r.Post("/update-master-profile", h.updateMaster)
	h.mountPicture(r)
}

func (h *Handler) mountPicture(r chi.Router) {
	r.Post("/upload-profile-pic", h.uploadPicture)
	r.Get("/profile-pic", h.picture)
}

// only rejects principals of any other role.
func only(role shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil || p.Role() != role {
				httpx.RespondError(w, errAccessDenied, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) cadetProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := h.service.Cadet(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("cadet profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, prof)
}

func (h *Handler) updateCadet(w http.ResponseWriter, r *http.Request) {
	var in CadetInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, errInvalidProfile, "")
		return
	}
	if err := h.service.UpdateCadet(r.Context(), shared.PrincipalFromContext(r.Context()), in); err != nil {
		h.logger.Error("update cadet profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) adminProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := h.service.Admin(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("admin profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, prof)
}

func (h *Handler) updateAdmin(w http.ResponseWriter, r *http.Request) {
	var in AdminInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, errInvalidProfile, "")
		return
	}
	if err := h.service.UpdateAdmin(r.Context(), shared.PrincipalFromContext(r.Context()), in); err != nil {
		h.logger.Error("update admin profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) masterProfile(w http.ResponseWriter, r *http.Request) {
	prof, err := h.service.Master(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.logger.Error("master profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, prof)
}

func (h *Handler) updateMaster(w http.ResponseWriter, r *http.Request) {
	var in MasterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, errInvalidProfile, "")
		return
	}
	if err := h.service.UpdateMaster(r.Context(), shared.PrincipalFromContext(r.Context()), in); err != nil {
		h.logger.Error("update master profile", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) uploadPicture(w http.ResponseWriter, r *http.Request) {
	if err := h.files.ParseForm(w, r); err != nil {
		httpx.RespondError(w, err, "Server error")
		return
	}
	name, err := h.files.SaveField(r, pictureField)
	if err != nil {
		h.logger.Warn("store profile picture", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error")
		return
	}
	if err := h.service.SetPicture(r.Context(), shared.PrincipalFromContext(r.Context()), name); err != nil {
		h.logger.Error("record profile picture", slog.String("file", name), slog.Any("error", err))
		if rmErr := h.files.Remove(name); rmErr != nil {
			h.logger.Warn("remove orphaned picture", slog.String("file", name), slog.Any("error", rmErr))
		}
		httpx.RespondError(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "filename": name})
}

func (h *Handler) picture(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.Picture(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Text(w, http.StatusNotFound, errNoPicture.Error())
			return
		}
		h.logger.Error("serve profile picture", slog.Any("error", err))
		httpx.Text(w, httpx.StatusOf(err), "Error")
		return
	}
	http.ServeFile(w, r, h.files.Path(name))
}
