package suggest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoPriorSuggestion is returned by RequestFollowUp when the
	// conversation has no successful suggestion to ground the question.
	ErrNoPriorSuggestion = errors.New("no previous suggestions found")

	// ErrEmptyQuestion is returned by RequestFollowUp for a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// APIError is a non-2xx answer from the backend. Payload holds whatever
// body was recovered; Message is the backend's own error text when the
// payload carried one.
type APIError struct {
	StatusCode int
	Status     string
	Payload    []byte
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, statusText string, payload []byte) *APIError {
	msg := resolve(payload).err
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = statusText
	}
	return &APIError{StatusCode: status, Status: statusText, Payload: payload, Message: msg}
}

// ConnectionError is a request that never produced an HTTP response.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
