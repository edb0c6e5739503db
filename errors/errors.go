package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category exposed to API clients.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindProvider          Kind = "provider_error"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindInvalidURL        Kind = "invalid_url"
	KindTimeout           Kind = "timeout"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal_error"
)

type AppError struct {
	Code    int    `json:"-"`
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
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

func InvalidInput(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func NotFound(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Provider wraps an upstream API failure. The upstream message is kept
// verbatim so callers can inspect it; nothing retries automatically.
func Provider(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindProvider,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func UnsupportedFormat(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnsupportedMediaType,
		Kind:    KindUnsupportedFormat,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidURL(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindInvalidURL,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Timeout(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTimeout,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Internal(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// IsKind reports whether err (or anything it wraps) is an AppError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
