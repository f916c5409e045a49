package api

import (
	"errors"
	"fmt"
)

// The client maps every failed call into one of these buckets so the
// views can decide what to show without sniffing HTTP details.
var (
	// ErrUnavailable: no response at all (connection refused, timeout).
	ErrUnavailable = errors.New("unable to connect to server")
	// ErrUnauthorized: the backend rejected the bearer credential. The
	// client handles this once, centrally (session clear + redirect),
	// so individual workflows only need to stop what they were doing.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound: the referenced event/booking does not exist.
	ErrNotFound = errors.New("not found")
)

// ServerError is a non-2xx response that carried a message payload.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.StatusCode)
}

// ValidationError is a client-side rejection: the request never left
// the process.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// UserMessage turns any error from the client into something safe to
// put on screen near the triggering control.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Error()
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	switch {
	case errors.Is(err, ErrUnavailable):
		return "Unable to connect to server. Please check your connection."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrNotFound):
		return "The requested item was not found."
	}
	return "An unexpected error occurred"
}
