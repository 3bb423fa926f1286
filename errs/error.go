package errs

import (
	"errors"
	"fmt"
)

// Application error codes. They map to HTTP statuses at the boundary but
// stay transport-agnostic in here.
const (
	// EINVALID is returned for missing or malformed input.
	EINVALID = "invalid"
	// EUNAUTHORIZED is returned when the actor is not allowed to touch
	// the resource, typically because they are not its owner.
	EUNAUTHORIZED = "unauthorized"
	// ENOTFOUND is returned when an id does not resolve to a record.
	ENOTFOUND = "not_found"
	// EUPSTREAM is returned when the database or media host fails.
	EUPSTREAM = "upstream"
	// EINTERNAL is the fallback for anything uncoded.
	EINTERNAL = "internal"
)

// Error is an application error with a machine-readable code and a
// human-readable message safe to show to API clients.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("vidtube error: code=%s message=%s", e.Code, e.Message)
}

// Errorf returns a new Error with the given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps the code of any error. Uncoded errors report EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps the client-facing message of any error. Uncoded
// errors get a generic message so internals never leak out.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error has occurred."
}
