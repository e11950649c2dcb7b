package joplin

import (
	"fmt"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: request failed with status code %d", e.Method, e.Path, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// NotFoundError is a 404 from the data API.
type NotFoundError struct {
	*StatusError
}

func (e *NotFoundError) Unwrap() error { return e.StatusError }

// NetworkError means the request never produced a response: connection
// refused, DNS failure, timeout or cancellation.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is raised before a request is sent when a payload is
// missing a required field.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: field %s failed %q", e.Field, e.Rule)
}
