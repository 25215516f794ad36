// Package apperror defines the domain error taxonomy shared by the service
// and handler layers. Services return these; handlers translate them to HTTP
// status codes and JSON bodies with errors.Is / errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a sentinel cause, a human-readable message and, for
// validation and conflict errors, the field(s) the message applies to.
// Fields takes precedence over Field when both are set.
type AppError struct {
	Err     error             // sentinel cause, matched with errors.Is
	Message string            // human-readable error message
	Field   string            // optional: single field causing the error
	Fields  map[string]string // optional: field-keyed messages (400 bodies)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldMap returns the field-keyed messages for this error, synthesizing a
// single-entry map from Field/Message when no explicit map was provided.
func (e *AppError) FieldMap() map[string]string {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Field != "" {
		return map[string]string{e.Field: e.Message}
	}
	return nil
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// ValidationFields wraps a whole field→message map from a validator pass.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// Conflict reports a unique-constraint violation on the given field.
// Handlers map it to 400 with a field-keyed body, same shape as validation.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// InvalidCredentials is the single, undistinguishable login failure: the
// caller cannot tell an unknown email from a wrong password.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "no active account found with the provided credentials",
		Field:   "credentials",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for missing or failed authentication.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
