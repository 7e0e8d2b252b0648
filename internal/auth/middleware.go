package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cadet-portal/cadet-portal/internal/platform/httpx"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return c
}

// Authenticate requires a valid, unrevoked token cookie. Every rejection
// answers with the same body; the reason only reaches the log.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw string
		if cookie, err := r.Cookie(h.cookieName); err == nil {
			raw = cookie.Value
		}
		claims, principal, err := h.service.Verify(r.Context(), raw)
		if err != nil {
			reason := rejectionReason(err)
			if reason == "" {
				h.logger.Error("token verification failed", slog.String("path", r.URL.Path), slog.Any("error", err))
				httpx.Msg(w, http.StatusInternalServerError, "Server error.")
				return
			}
			h.logger.Warn("token rejected", slog.String("reason", reason), slog.String("path", r.URL.Path))
			httpx.Msg(w, http.StatusUnauthorized, "Login required.")
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "missing"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid"
	}
	return ""
}
