package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMessages is returned when there is nothing to send
	ErrNoMessages = errors.New("no messages to replay")

	// ErrNoBody is returned when the API answers without a response body
	ErrNoBody = errors.New("response has no body")
)

// HTTPError is a non-2xx answer from the API host
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error returns the body when it is JSON, since API hosts put their
// explanation there, and the status line otherwise
func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body != "" && json.Valid([]byte(body)) {
		return body
	}
	if e.Status != "" {
		return e.Status
	}
	return fmt.Sprintf("%d", e.StatusCode)
}

// StreamError is a failure after streaming started. Partial holds the
// text received before the failure.
type StreamError struct {
	Partial string
	Err     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream interrupted: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// APIError is an error event sent inside the stream
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}
