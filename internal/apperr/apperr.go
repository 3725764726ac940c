// Package apperr defines the error kinds surfaced by catalog lookups,
// the codec and the preview pipeline.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error. Kinds are comparable with errors.Is:
//
//	errors.Is(err, apperr.NotFound)
type Kind string

const (
	NotFound             Kind = "not_found"
	CodecError           Kind = "codec_error"
	IOError              Kind = "io_error"
	InvalidConfiguration Kind = "invalid_configuration"
	InvalidDimensions    Kind = "invalid_dimensions"
)

func (k Kind) Error() string { return string(k) }

// Error is a classified error with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New wraps err with the given kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind, so callers do not need to unwrap to *Error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain,
// or the empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case CodecError, InvalidDimensions:
		return http.StatusUnprocessableEntity
	case InvalidConfiguration:
		return http.StatusBadRequest
	case IOError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
