package shared

import "errors"

var (
	// ErrNotFound indicates a resource that is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates a role or ownership failure.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates a missing or rejected identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicate indicates a unique key collision.
	ErrDuplicate = errors.New("duplicate entry")
)

// Error carries a caller-facing message for one of the sentinel kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds an ErrNotFound with msg.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

// Forbidden builds an ErrForbidden with msg.
func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

// Invalid builds an ErrValidation with msg.
func Invalid(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }

// Unauthorized builds an ErrUnauthorized with msg.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }

// Duplicate builds an ErrDuplicate with msg.
func Duplicate(msg string) error { return &Error{Kind: ErrDuplicate, Msg: msg} }

// UserMessage extracts the caller-facing message from err, if it has one.
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg, true
	}
	return "", false
}
