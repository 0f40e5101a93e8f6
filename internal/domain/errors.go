package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindToken          ErrKind = "token"          // 400 (token submitted as flow input)
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindPrecondition   ErrKind = "precondition"   // 412
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ----------------------
// Token errors
// ----------------------

// ErrTokenInvalid is the single undifferentiated failure for malformed,
// tampered, or expired tokens. Callers never learn which.
func ErrTokenInvalid() *Error {
	return New(KindToken, "token_invalid", "invalid or expired token")
}

// ErrTokenRejected is the request-boundary variant: a bearer token was
// presented but did not verify (403, as opposed to 401 for no token at all).
func ErrTokenRejected() *Error {
	return New(KindForbidden, "token_rejected", "invalid or expired token")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "no token provided")
}

// ----------------------
// Auth errors (401)
// ----------------------

func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrEmailNotVerified() *Error {
	return New(KindForbidden, "email_not_verified", "email not verified")
}

// Reset is unavailable for accounts without a local password (OAuth-only).
func ErrResetUnavailable() *Error {
	return New(KindForbidden, "reset_unavailable", "password reset unavailable for this account")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "email already registered")
}

// ----------------------
// Precondition (412)
// ----------------------

// The user has never completed the Google consent flow.
func ErrNoGoogleGrant() *Error {
	return New(KindPrecondition, "no_google_grant", "no Google calendar authorization on file")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrNotifierUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "notifier_unavailable", "notification delivery failed", cause)
}

func ErrProviderUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "provider_unavailable", "identity provider request failed", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
