package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// FieldError is a single per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents an application error
type AppError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrUnauthenticated, ErrInvalidCredential, ErrCredentialExpired:
		return http.StatusUnauthorized
	case ErrForbidden, ErrAccountInactive:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidationFailed, ErrConflict, ErrInvalidTarget:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidationFailed
	ErrUnauthenticated
	ErrForbidden
	ErrInternal
	ErrConflict
	ErrInvalidTarget
	ErrUpstreamFailure
	ErrInvalidCredential
	ErrCredentialExpired
	ErrAccountInactive
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "NotFound"
	case ErrValidationFailed:
		return "ValidationFailed"
	case ErrUnauthenticated:
		return "Unauthenticated"
	case ErrForbidden:
		return "Forbidden"
	case ErrConflict:
		return "Conflict"
	case ErrInvalidTarget:
		return "InvalidTarget"
	case ErrUpstreamFailure:
		return "UpstreamFailure"
	case ErrInvalidCredential:
		return "InvalidCredential"
	case ErrCredentialExpired:
		return "CredentialExpired"
	case ErrAccountInactive:
		return "AccountInactive"
	default:
		return "Internal"
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{
		Code:    ErrValidationFailed,
		Message: message,
		Fields:  fields,
	}
}

func Unauthenticated(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: message,
		Err:     err,
	}
}

func InvalidCredential(message string) *AppError {
	return &AppError{Code: ErrInvalidCredential, Message: message}
}

func CredentialExpired(err error) *AppError {
	return &AppError{Code: ErrCredentialExpired, Message: "token expired", Err: err}
}

func AccountInactive() *AppError {
	return &AppError{Code: ErrAccountInactive, Message: "account is inactive"}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: ErrForbidden, Message: message}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Code: ErrConflict, Message: message, Err: err}
}

func InvalidTarget(message string) *AppError {
	return &AppError{Code: ErrInvalidTarget, Message: message}
}

func Upstream(message string, err error) *AppError {
	return &AppError{Code: ErrUpstreamFailure, Message: message, Err: err}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// As extracts an *AppError from err. Errors outside the taxonomy are
// classified as Internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
