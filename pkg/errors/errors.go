package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func BadRequest(message string, err error) *AppError {
	return New("BAD_REQUEST", message, http.StatusBadRequest, err)
}

func Unauthorized(message string, err error) *AppError {
	return New("UNAUTHORIZED", message, http.StatusUnauthorized, err)
}

func Forbidden(message string, err error) *AppError {
	return New("FORBIDDEN", message, http.StatusForbidden, err)
}

func Internal(message string, err error) *AppError {
	return New("INTERNAL_ERROR", message, http.StatusInternalServerError, err)
}

func TooManyRequests(message string) *AppError {
	return New("TOO_MANY_REQUESTS", message, http.StatusTooManyRequests, nil)
}

// Upstream wraps a failure of the marketplace REST API.
func Upstream(message string, status int, err error) *AppError {
	cause := fmt.Errorf("upstream status %d", status)
	if err != nil {
		cause = fmt.Errorf("upstream status %d: %w", status, err)
	}
	return New("UPSTREAM_ERROR", message, http.StatusBadGateway, cause)
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
