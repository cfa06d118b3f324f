// Package adminerr classifies the failures surfaced by the admin layer into
// validation, API and missing-precondition errors.
package adminerr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an error.
type ErrorType string

const (
	TypeValidation   ErrorType = "validation"
	TypeAPI          ErrorType = "api"
	TypePrecondition ErrorType = "precondition"
)

// Error codes.
const (
	CodeRequired       = "required"
	CodeInvalidFormat  = "invalid_format"
	CodeConflict       = "conflict"
	CodeNotFound       = "not_found"
	CodeUnauthorized   = "unauthorized"
	CodeBackend        = "backend"
	CodeTransport      = "transport"
	CodeNoUserContext  = "no_user_context"
	CodeMissingSlot    = "missing_presigned_slot"
	CodeBusy           = "busy"
	CodeInvalidRequest = "invalid_request"
)

// GenericMessage is shown when an error response carries no usable message.
const GenericMessage = "요청을 처리하지 못했습니다"

// Error is the typed error carried across the admin layer.
type Error struct {
	Type    ErrorType           `json:"type"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Status  int                 `json:"status,omitempty"`
	Field   string              `json:"field,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Details map[string]any      `json:"details,omitempty"`
	Cause   error               `json:"-"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	}
	if e.Status > 0 {
		return fmt.Sprintf("[%s:%s] status %d: %s", e.Type, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a single detail.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithFields attaches field-level messages returned by the backend.
func (e *Error) WithFields(fields map[string][]string) *Error {
	if len(fields) == 0 {
		return e
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string, len(fields))
	}
	for key, messages := range fields {
		e.Fields[key] = append(e.Fields[key], messages...)
	}
	return e
}

// NewValidation creates a field-local validation error.
func NewValidation(field, code, message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// NewAPI creates an error for a failed backend call. The code is derived from
// the HTTP status.
func NewAPI(status int, message string) *Error {
	if message == "" {
		message = GenericMessage
	}
	return &Error{
		Type:    TypeAPI,
		Code:    codeForStatus(status),
		Status:  status,
		Message: message,
	}
}

// NewTransport wraps a network failure that never produced a response.
func NewTransport(cause error) *Error {
	return &Error{
		Type:    TypeAPI,
		Code:    CodeTransport,
		Message: GenericMessage,
		Cause:   cause,
	}
}

// NewPrecondition creates an error for an operation refused because a
// prerequisite is absent.
func NewPrecondition(code, message string) *Error {
	return &Error{
		Type:    TypePrecondition,
		Code:    code,
		Message: message,
	}
}

// As extracts the typed error from err.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return isType(err, TypeValidation)
}

// IsAPI reports whether err is an API error.
func IsAPI(err error) bool {
	return isType(err, TypeAPI)
}

// IsPrecondition reports whether err is a missing-precondition error.
func IsPrecondition(err error) bool {
	return isType(err, TypePrecondition)
}

// IsConflict reports whether err is a stale version rejection.
func IsConflict(err error) bool {
	typed, ok := As(err)
	return ok && typed.Code == CodeConflict
}

// UserMessage returns the text to show a user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if typed, ok := As(err); ok && typed.Message != "" {
		return typed.Message
	}
	return GenericMessage
}

func isType(err error, kind ErrorType) bool {
	typed, ok := As(err)
	return ok && typed.Type == kind
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
		return CodeConflict
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CodeInvalidRequest
	default:
		return CodeBackend
	}
}
