package httpx

import (
	"errors"
	"net/http"

	"github.com/cadet-portal/cadet-portal/internal/shared"
)

// StatusOf maps a domain error to its HTTP status. Unique key collisions are
// reported as 400 like any other rejected input.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"msg": ...} for err. Domain errors keep their own
// message; anything else becomes a 500 carrying fallback.
func RespondError(w http.ResponseWriter, err error, fallback string) {
	respondError(w, "msg", err, fallback)
}

// RespondErrorMessage is RespondError with the body key "message".
func RespondErrorMessage(w http.ResponseWriter, err error, fallback string) {
	respondError(w, "message", err, fallback)
}

func respondError(w http.ResponseWriter, key string, err error, fallback string) {
	status := StatusOf(err)
	msg := fallback
	if status != http.StatusInternalServerError {
		if m, ok := shared.UserMessage(err); ok {
			msg = m
		}
	}
	JSON(w, status, map[string]string{key: msg})
}
