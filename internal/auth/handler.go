package auth

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// HandlerConfig configures cookie and rate limiting behaviour.
type HandlerConfig struct {
	CookieName      string
	Production      bool
	LoginRatePerMin int
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	validator  *validator.Validate
	cookieName string
	production bool
	loginRate  int
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.CookieName
	if name == "" {
		name = "token"
	}
	return &Handler{
		logger:     logger,
		service:    service,
		validator:  validator.New(),
		cookieName: name,
		production: cfg.Production,
		loginRate:  cfg.LoginRatePerMin,
	}
}

// MountRoutes registers routes under /auth.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.loginRate > 0 {
			r.Use(httprate.Limit(h.loginRate, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Post("/register-user", h.registerUser)
		r.Post("/register-admin", h.registerAdmin)
		r.Post("/login", h.login)
	})
	r.Post("/logout", h.logout)
	r.Get("/anos", h.listUnits)
	r.With(h.Authenticate).Get("/validate-role", h.validateRole)
}

// MountPasswordRoutes registers /api/change-password. The router must
// already apply Authenticate.
func (h *Handler) MountPasswordRoutes(r chi.Router) {
	r.Post("/", h.changePassword)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || h.validator.Struct(req) != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing credentials.")
		return
	}
	result, err := h.service.Login(r.Context(), req.Identifier, req.Password, clientIP(r))
	if err != nil {
		if httpx.StatusOf(err) == http.StatusInternalServerError {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err, "Server error.")
		return
	}
	http.SetCookie(w, h.tokenCookie(result.Token, result.ExpiresAt))
	httpx.JSON(w, http.StatusOK, map[string]string{"redirect": result.Redirect})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value, clientIP(r)); err != nil {
			h.logger.Error("logout", slog.Any("error", err))
			httpx.Msg(w, http.StatusInternalServerError, "Server error.")
			return
		}
	}
	http.SetCookie(w, h.clearedCookie())
	httpx.Msg(w, http.StatusOK, "Logged out successfully.")
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req NewCadet
	if err := httpx.DecodeJSON(r, &req); err != nil || h.validator.Struct(req) != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if err := h.service.RegisterCadet(r.Context(), req); err != nil {
		h.logger.Error("register cadet", slog.String("regimental_number", req.RegimentalNumber), slog.Any("error", err))
		httpx.RespondError(w, err, "Server error.")
		return
	}
	httpx.Msg(w, http.StatusOK, "User registration successful.")
}

func (h *Handler) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req NewAdmin
	if err := httpx.DecodeJSON(r, &req); err != nil || h.validator.Struct(req) != nil {
		httpx.Msg(w, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if err := h.service.RegisterAdmin(r.Context(), req); err != nil {
		h.logger.Error("register admin", slog.String("ano_id", req.UnitID), slog.Any("error", err))
		httpx.RespondError(w, err, "Server error.")
		return
	}
	httpx.Msg(w, http.StatusOK, "Admin registration successful (pending approval).")
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.ListUnits(r.Context())
	if err != nil {
		h.logger.Error("list units", slog.Any("error", err))
		httpx.RespondError(w, err, "Server error.")
		return
	}
	httpx.JSON(w, http.StatusOK, units)
}

func (h *Handler) validateRole(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"user": ClaimsFromContext(r.Context())})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"message": "Both current and new passwords are required."})
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), p, req.CurrentPassword, req.NewPassword, clientIP(r)); err != nil {
		h.logger.Error("change password", slog.Any("error", err))
		httpx.RespondErrorMessage(w, err, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) tokenCookie(value string, expiresAt time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (h *Handler) clearedCookie() *http.Cookie {
	c := h.tokenCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}

// clientIP prefers the address chi's RealIP middleware resolved.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
