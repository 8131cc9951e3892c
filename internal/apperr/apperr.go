// Package apperr carries the error taxonomy shared by every module. A Kind
// decides the HTTP status and whether the message is safe to show.
package apperr

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindValidation        Kind = "VALIDATION"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindPersistence       Kind = "PERSISTENCE"
	KindLoggingFailure    Kind = "LOGGING_FAILURE"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Public reports whether the error's own message and details may be returned to callers.
	Public bool
}

var metadataByKind = map[Kind]Metadata{
	KindNotFound:          {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", Public: true},
	KindConflict:          {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected", Public: true},
	KindValidation:        {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", Public: true},
	KindInsufficientStock: {HTTPStatus: http.StatusBadRequest, PublicMessage: "insufficient stock", Public: true},
	KindUnauthorized:      {HTTPStatus: http.StatusUnauthorized, PublicMessage: "invalid credentials", Public: true},
	KindPersistence:       {HTTPStatus: http.StatusInternalServerError, PublicMessage: "database error", Public: false},
	KindLoggingFailure:    {HTTPStatus: http.StatusInternalServerError, PublicMessage: "write succeeded but logging failed", Public: true},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindPersistence]
}

type Error struct {
	kind    Kind
	message string
	details any
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindPersistence
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error of the same kind, so sentinel kinds work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.message == "" && t.kind == e.kind
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the kind of the first *Error in the chain, or KindPersistence.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.Kind()
	}
	return KindPersistence
}

// Sentinels for errors.Is checks against a kind only.
var (
	ErrNotFound          = &Error{kind: KindNotFound}
	ErrConflict          = &Error{kind: KindConflict}
	ErrValidation        = &Error{kind: KindValidation}
	ErrInsufficientStock = &Error{kind: KindInsufficientStock}
	ErrUnauthorized      = &Error{kind: KindUnauthorized}
	ErrPersistence       = &Error{kind: KindPersistence}
	ErrLoggingFailure    = &Error{kind: KindLoggingFailure}
)
