package client

import (
	"fmt"
	"net/http"
)

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BadRequestError struct {
	Message    string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}

// statusError maps a non-2xx response to one of the typed errors
func statusError(service string, statusCode int, body []byte) error {
	errMsg := fmt.Sprintf("%s returned status %d: %s", service, statusCode, string(body))

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: errMsg, StatusCode: statusCode}
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: errMsg, StatusCode: statusCode}
	case http.StatusBadRequest:
		return &BadRequestError{Message: errMsg, StatusCode: statusCode}
	default:
		return &BackendError{Message: errMsg, StatusCode: statusCode}
	}
}
