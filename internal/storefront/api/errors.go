package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// StatusConnError is the sentinel status code carried by errors that
// represent a transport-level failure: the request never produced an HTTP
// response, so no real status exists.
const StatusConnError = 0

const (
	connErrorMessage    = "connection error: could not reach the storefront API"
	genericErrorMessage = "the request failed, please try again"
)

// Error is the single error shape that leaves this package. Message is
// human readable, StatusCode is the HTTP status (or StatusConnError), and
// Data retains the parsed or raw response body when one existed.
type Error struct {
	Message    string
	StatusCode int
	Data       any
}

func (e *Error) Error() string {
	if e.StatusCode == StatusConnError {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// normalizeError funnels every failure through one shaping step.
// Transport failures become the connection sentinel, *Error values pass
// through untouched, anything else becomes a generic 500.
func normalizeError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &Error{
			Message:    connErrorMessage,
			StatusCode: StatusConnError,
		}
	}

	return &Error{
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
	}
}

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsConnectionError reports whether err carries the transport-failure
// sentinel.
func IsConnectionError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == StatusConnError
}

// Message extracts the normalized user-facing message from err, falling
// back to the plain error string for non-API errors.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
