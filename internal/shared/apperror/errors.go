// Package apperror is the error taxonomy shared by every domain.
// Services return *Error values; the HTTP error middleware is the only
// place they are turned into responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
)

// Error carries a stable machine code plus optional context for the client
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail returns a copy with key set in Details
func (e *Error) WithDetail(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// HTTPStatus maps the kind onto a response status
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ============================================
// Constructors
// ============================================

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func Permission(code, message string) *Error {
	return &Error{Kind: KindPermission, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Storage hides err behind a generic message; err is kept for logging
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Code: "STORAGE_ERROR", Message: "A storage error occurred", Err: err}
}

// Common errors
func AccessDenied() *Error {
	return Permission("ACCESS_DENIED", "You do not have access to this resource")
}

func AdminRequired() *Error {
	return Permission("ADMIN_REQUIRED", "Administrator role required")
}

func InvalidID(param string) *Error {
	return Validation("INVALID_ID", fmt.Sprintf("Invalid %s", param)).WithDetail("param", param)
}

// ============================================
// Inspection
// ============================================

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

func IsNotFound(err error) bool   { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool   { return IsKind(err, KindConflict) }
func IsPermission(err error) bool { return IsKind(err, KindPermission) }
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// CodeOf returns the machine code, or empty when err is not an *Error
func CodeOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ""
}
