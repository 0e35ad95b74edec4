package source

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyBaseURL is returned when a client has no API base URL.
	ErrEmptyBaseURL = errors.New("base URL is required")

	// ErrInvalidPage is returned for a negative offset or non-positive limit.
	ErrInvalidPage = errors.New("invalid page request")

	// ErrDecodeResponse is returned when a response body is not the expected JSON.
	ErrDecodeResponse = errors.New("failed to decode response")

	// ErrEmptyUserID is returned when followers are requested without a user id.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrInvalidDump is returned when a dump file holds neither an object with
	// a "notifications" array nor a bare array.
	ErrInvalidDump = errors.New("invalid dump file")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string // first bytes of the response body
}

// Error implements error.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
