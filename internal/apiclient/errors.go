package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError is a transport failure; the request may be retried.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage implements listctl.Messager.
func (e *NetworkError) UserMessage() string {
	return "Cannot reach the server. Check your connection and try again."
}

// ServerError is a 4xx/5xx answer carrying the backend {code, message}.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("apiclient: server returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("apiclient: server returned %d: %s", e.Status, e.Message)
}

// UserMessage implements listctl.Messager.
func (e *ServerError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return "The server rejected the request."
}

// ConflictError is an HTTP 409, e.g. deleting a record that is still in use.
type ConflictError struct {
	Server *ServerError
}

func (e *ConflictError) Error() string {
	return "apiclient: conflict: " + e.Server.Message
}

func (e *ConflictError) Unwrap() error { return e.Server }

// UserMessage implements listctl.Messager.
func (e *ConflictError) UserMessage() string {
	if e.Server != nil && e.Server.Message != "" {
		return e.Server.Message
	}
	return "The record is in use and cannot be changed."
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusUnauthorized
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
