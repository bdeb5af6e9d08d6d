package cookiejwt

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// StatusError represents a non-2xx HTTP response returned by the server.
type StatusError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body contains the raw response body, if available.
	Body []byte
	// Request is the descriptor of the request that failed.
	Request *Request
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	prefix := "request failed"
	if e.StatusCode == http.StatusUnauthorized {
		prefix = "unauthorized"
	}
	if e.Request != nil {
		prefix += " " + e.Request.Method + " " + e.Request.URL
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("%s (status %d): %s", prefix, e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("%s (status %d)", prefix, e.StatusCode)
}

// Unauthorized returns true for 401 responses.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// NewStatusError constructs a new StatusError.
func NewStatusError(statusCode int, body []byte, request *Request) *StatusError {
	return &StatusError{StatusCode: statusCode, Body: body, Request: request}
}

// IsUnauthorized returns true if err is or wraps a 401 StatusError.
func IsUnauthorized(err error) bool {
	var target *StatusError
	return errors.As(err, &target) && target.Unauthorized()
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a StatusError.
func StatusCode(err error) int {
	var target *StatusError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

// RequestOf returns the request descriptor attached to err, if any.
func RequestOf(err error) *Request {
	var target *StatusError
	if errors.As(err, &target) {
		return target.Request
	}
	return nil
}

// Detail returns the "detail" field of a JSON error body, or an empty string.
func Detail(err error) string {
	var target *StatusError
	if !errors.As(err, &target) || len(target.Body) == 0 {
		return ""
	}
	payload := struct {
		Detail string `json:"detail"`
	}{}
	if json.Unmarshal(target.Body, &payload) != nil {
		return ""
	}
	return payload.Detail
}
