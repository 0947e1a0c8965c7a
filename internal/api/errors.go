package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMessage is shown when a failure carries no usable message.
const DefaultMessage = "Something went wrong. Please try again."

// Kind classifies a failed backend call.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a non-2xx reply from the backend.
type Error struct {
	Method   string
	Path     string
	Status   int
	Messages []string
	Body     string
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, ", ")
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s %s: api error (status %d): %s", e.Method, e.Path, e.Status, msg)
}

// HTTPStatusCode returns the response status.
func (e *Error) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}

// TransportError is a failure to reach the backend or read its reply.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newError(method, path string, status int, body []byte) *Error {
	return &Error{
		Method:   method,
		Path:     path,
		Status:   status,
		Messages: parseMessages(body),
		Body:     string(body),
	}
}

// parseMessages reads the body's "message" field, which is either a string
// or an array of strings.
func parseMessages(body []byte) []string {
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Message) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(envelope.Message, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return []string{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(envelope.Message, &many); err == nil {
		out := many[:0]
		for _, m := range many {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// Classify reports which failure kind err belongs to.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status >= 500:
			return KindServer
		case apiErr.Status >= 400:
			return KindValidation
		}
		return KindUnknown
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return KindTransport
	}
	return KindUnknown
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsRouteCollision reports whether err is the 4xx a listing endpoint returns
// when the backend routes its literal path segment to a by-id handler.
// Auth failures are excluded so they surface instead of fanning out.
func IsRouteCollision(err error) bool {
	status := StatusCode(err)
	if status < 400 || status > 499 {
		return false
	}
	return status != http.StatusUnauthorized && status != http.StatusForbidden
}

// UserMessage extracts the notification text for err.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return strings.Join(apiErr.Messages, ", ")
	}
	return DefaultMessage
}
