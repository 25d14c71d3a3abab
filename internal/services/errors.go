package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict error")
	ErrNotFound       = errors.New("not found error")
	ErrAuthorization  = errors.New("authorization error")
	ErrPrecondition   = errors.New("precondition error")
	ErrAuthentication = errors.New("authentication error")
)

// Error is a failure with a user-visible message and one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrAuthorization, ErrPrecondition, ErrAuthentication} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// validationError turns validator output into a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return newError(ErrValidation, "Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return newError(ErrValidation, "%v", err)
}
