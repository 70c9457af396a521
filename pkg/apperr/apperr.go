// Package apperr carries the error taxonomy of the approval core across
// service boundaries without leaking storage details into messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindFinalizedConflict
	KindUnauthorized
	KindInvalidArgument
	KindLedgerInconsistency
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindFinalizedConflict:
		return "finalized_conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindLedgerInconsistency:
		return "ledger_inconsistency"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the kind onto the HTTP boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindFinalizedConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, not exposed to callers
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error with a caller-facing message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The cause is kept for logs via
// Unwrap but the message is the only part that crosses the boundary.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain, KindUnknown if unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
