package domain

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConfiguration
)

// Error is a failure the caller is allowed to see. Message goes to the client verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Status maps k onto the API's status codes. A conflict is reported as a bad
// request, which is what clients of the register and Google endpoints expect.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) error    { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error      { return &Error{Kind: KindConflict, Message: msg} }
func Unauthorized(msg string) error  { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) error     { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error      { return &Error{Kind: KindNotFound, Message: msg} }
func Configuration(msg string) error { return &Error{Kind: KindConfiguration, Message: msg} }

// AsError unwraps err into a *Error when it carries one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
