// Package qerror defines the typed error taxonomy for the query pipeline.
// Every stage returns errors of this package so that callers never see raw
// driver or infrastructure error objects. The Kind is machine-readable and
// doubles as the failure status in the response envelope.
package qerror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ValidationError marks unsafe or malformed SQL. Never retried,
	// surfaced verbatim to the caller.
	ValidationError Kind = "validation_error"
	// PermissionDenied marks an authorization failure. The message must not
	// leak schema details the user cannot already see.
	PermissionDenied Kind = "permission_denied"
	// RateLimit tells the caller to back off; RetryAfter carries the hint.
	RateLimit Kind = "rate_limit"
	// Timeout marks an execution that exceeded its deadline. Safe for the
	// caller to retry with a simpler query; the pipeline never retries it.
	Timeout Kind = "timeout"
	// SQLError marks a query the database itself rejected after it passed
	// validation and authorization. Carries the driver message.
	SQLError Kind = "sql_error"
	// ServerError marks infrastructure failures such as pool exhaustion.
	ServerError Kind = "server_error"
)

// Error wraps an error with its kind and a caller-facing message.
type Error struct {
	Kind       Kind
	Message    string
	Retriable  bool
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Retriable: retriable(kind)}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates an Error of the given kind around an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Retriable: retriable(kind), Err: err}
}

func retriable(kind Kind) bool {
	switch kind {
	case RateLimit, Timeout, ServerError:
		return true
	default:
		return false
	}
}

// KindOf extracts the Kind from an error chain. Errors that did not come
// from a pipeline stage are treated as ServerError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ServerError
}

// AsError returns the *Error in err's chain, wrapping err as a ServerError
// when it carries no taxonomy kind.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(ServerError, "internal error", err)
}

// HTTPStatus maps an error kind to the HTTP status code of the envelope.
func HTTPStatus(kind Kind) int {
	switch kind {
	case ValidationError, SQLError:
		return http.StatusBadRequest
	case PermissionDenied:
		return http.StatusForbidden
	case RateLimit:
		return http.StatusTooManyRequests
	case Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
