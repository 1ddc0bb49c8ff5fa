// Package apperror provides structured error handling for the quoting API.
// Every error that reaches an HTTP client is an AppError so responses keep
// one shape: {code, message, details}.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInternal = "INTERNAL_ERROR"

	// 400
	CodeValidation = "VALIDATION_ERROR"

	// 422
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeInvalidTransition      = "INVALID_STATUS_TRANSITION"
	CodeDocumentLocked         = "DOCUMENT_LOCKED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"

	// 409
	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"

	CodeRateLimited = "RATE_LIMITED"
)

// AppError is the standard error type of the service.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the status the error middleware answers with.
	HTTPStatus int `json:"-"`

	// Err is logged, never rendered.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail sets details[key] and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidation reports a single invalid input (400).
func NewValidation(message string) *AppError {
	return newError(http.StatusBadRequest, CodeValidation, message)
}

// NewValidationList reports every collected message under details["errors"].
// The list is copied.
func NewValidationList(message string, errs []string) *AppError {
	list := make([]string, len(errs))
	copy(list, errs)
	return NewValidation(message).WithDetail("errors", list)
}

func NewNotFound(entity string, id any) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s introuvable", entity)).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule reports a violated business rule under a caller code (422).
func NewBusinessRule(code, message string) *AppError {
	return newError(http.StatusUnprocessableEntity, code, message)
}

// NewInvalidTransition reports a forbidden document status change.
func NewInvalidTransition(entity, from, to string) *AppError {
	return NewBusinessRule(CodeInvalidTransition,
		fmt.Sprintf("%s : passage de %q à %q impossible", entity, from, to)).
		WithDetail("entity", entity).
		WithDetail("from", from).
		WithDetail("to", to)
}

// NewDocumentLocked reports an edit attempted on a document whose status
// no longer allows content changes.
func NewDocumentLocked(entity, status string) *AppError {
	return NewBusinessRule(CodeDocumentLocked,
		fmt.Sprintf("%s non modifiable au statut %q", entity, status)).
		WithDetail("entity", entity).
		WithDetail("status", status)
}

// NewConcurrentModification reports a stale version on save (409).
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(http.StatusConflict, CodeConcurrentModification,
		"Le document a été modifié entre-temps, veuillez le recharger").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInternal hides err from the client.
func NewInternal(err error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "Internal server error").WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return newError(http.StatusForbidden, CodeForbidden, message)
}

func NewRateLimited() *AppError {
	return newError(http.StatusTooManyRequests, CodeRateLimited, "Trop de requêtes, réessayez plus tard")
}

// NewIdempotencyConflict is returned while a request with the same key is
// still being processed.
func NewIdempotencyConflict(key string) *AppError {
	return newError(http.StatusConflict, CodeIdempotency, "Operation already in progress").
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch is returned when a key is reused by another user,
// operation or body.
func NewIdempotencyMismatch(key string) *AppError {
	return newError(http.StatusConflict, CodeIdempotency, "Idempotency key mismatch").
		WithDetail("idempotency_key", key)
}

func NewConflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

// NewDuplicate reports a unique constraint hit on field.
func NewDuplicate(entity, field, value string) *AppError {
	return newError(http.StatusConflict, CodeDuplicate, fmt.Sprintf("%s : %s déjà utilisé", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

func IsValidation(err error) bool {
	return IsCode(err, CodeValidation)
}

func IsConcurrentModification(err error) bool {
	return IsCode(err, CodeConcurrentModification)
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Messages returns the aggregated messages of a validation list error, or the
// single message of any other AppError.
func Messages(err error) []string {
	appErr, ok := AsAppError(err)
	if !ok {
		return nil
	}
	if list, ok := appErr.Details["errors"].([]string); ok {
		return list
	}
	return []string{appErr.Message}
}
