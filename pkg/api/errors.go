package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an AppError. The outermost kind of a chain is what
// governs caller-visible handling (HTTP status mapping in transport); inner
// links are kept for diagnostics only.
type ErrorKind string

const (
	// KindForbidden marks requests that must be rejected with 403.
	KindForbidden ErrorKind = "forbidden"

	// KindInternal marks unexpected server-side failures.
	KindInternal ErrorKind = "internal"
)

// AppError is a classified error that may wrap a cause. Classification is
// additive: wrapping an error in a new AppError changes how the boundary
// treats it without losing the original chain.
type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return string(e.Kind)
	}
}

// Unwrap exposes the cause so errors.Is/errors.As can walk the chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Internal creates an unclassified-as-forbidden internal error.
func Internal(message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message}
}

// InternalWrap creates an internal error wrapping a cause.
func InternalWrap(message string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Cause: cause}
}

// Forbidden creates a bare forbidden error.
func Forbidden() *AppError {
	return &AppError{Kind: KindForbidden, Message: "must be logged in to perform that action"}
}

// ChainForbidden wraps err in a forbidden classification. The wrapped error
// remains reachable through Unwrap for logging.
func ChainForbidden(err error) *AppError {
	return &AppError{Kind: KindForbidden, Message: "must be logged in to perform that action", Cause: err}
}

// Kind returns the outermost classification of err, or "" if err is not an
// AppError. Only the top of the chain counts: a forbidden error with an
// internal cause is forbidden.
func Kind(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsForbidden reports whether the outermost classification is forbidden.
func IsForbidden(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == KindForbidden
}

// IsInternal reports whether the outermost classification is internal.
func IsInternal(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == KindInternal
}

// TokenRevokedError is the distinguished signal for API tokens that were
// generated by the deprecated insecure random generator and have been
// revoked. It is deliberately never wrapped in an AppError classification so
// it survives intact to the HTTP boundary, where it maps to a response
// prompting the user to generate a new token.
type TokenRevokedError struct{}

// Error implements the error interface.
func (e *TokenRevokedError) Error() string {
	return "this token was generated with an insecure method and has been revoked, please generate a new token"
}

// IsTokenRevoked reports whether err (anywhere in its chain) is the
// distinguished revoked-token signal.
func IsTokenRevoked(err error) bool {
	var revoked *TokenRevokedError
	return errors.As(err, &revoked)
}

// ErrorResponse is the top-level JSON error envelope.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail carries the wire form of an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
