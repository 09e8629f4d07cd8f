package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RequestError represents a failed call to the front desk API. Message holds
// the server's error text verbatim when the response body carried one.
type RequestError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequest builds a RequestError from a response status and body. An empty
// body falls back to the caller-supplied default message.
func NewRequest(statusCode int, body, fallback string) *RequestError {
	message := strings.TrimSpace(body)
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	return &RequestError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewTransport wraps a network-level failure that never produced a response.
func NewTransport(err error, fallback string) *RequestError {
	return &RequestError{
		Message: fallback,
		Err:     err,
	}
}

// IsUnauthorized reports whether err is a 401 from the server, the signal
// that the stored token is no longer valid.
func IsUnauthorized(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
