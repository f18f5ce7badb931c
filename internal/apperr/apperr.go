// Package apperr defines the closed set of error variants the HTTP layer
// knows how to translate. Services return these for every expected failure;
// anything else falls through to the global 500 handler.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an Error with its variant.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
	KindInternal
)

// FieldError carries one field-level validation message, serialized as
// {"field": "message"} to match the API contract.
type FieldError struct {
	Field   string
	Message string
}

// Error is the typed failure exchanged between services and the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError

	badRequest bool
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status maps the variant to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		if e.badRequest {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: message, cause: cause}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// BadRequest covers domain 400s (invalid GeoJSON, unknown foreign key, empty
// partial update). It reuses the validation variant shape without field detail
// but keeps the 400 status of the original contract.
func BadRequest(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: nil, badRequest: true}
}

// As extracts an *Error from any error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
