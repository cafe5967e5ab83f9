package models

import "errors"

// ErrorValidation is malformed input. Field is optional.
type ErrorValidation struct {
	Field   string
	Message string
}

func (e ErrorValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ErrorConflict is a uniqueness violation (email, tag name, vote).
type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

// ErrorUnauthorized means the caller is not (or no longer) authenticated.
type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

// ErrorForbidden means the caller's role does not allow the operation.
type ErrorForbidden struct {
	Message string
}

func (e ErrorForbidden) Error() string { return e.Message }

type ErrorNotFound struct {
	Message string
}

func (e ErrorNotFound) Error() string { return e.Message }

// ErrorInternalServer wraps a storage failure. Message is safe to show to
// clients, Err is the cause and is only logged.
type ErrorInternalServer struct {
	Message string
	Err     error
}

func (e ErrorInternalServer) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e ErrorInternalServer) Unwrap() error { return e.Err }

var (
	ErrDuplicateVote      = ErrorConflict{Message: "user already voted on this comment"}
	ErrInvalidCredentials = ErrorUnauthorized{Message: "invalid credentials"}
)

// IsKind reports whether err is, or wraps, an error of the same type as target.
func IsKind[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
