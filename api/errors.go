package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrBusy          = errors.New("operation already in progress")
	ErrRequestFailed = errors.New("request failed")
	ErrTransport     = errors.New("transport failure")
)

var (
	ErrEmptyQuery = &ValidationError{Field: "query", Reason: "please enter a search query"}
	ErrEmptyPath  = &ValidationError{Field: "path", Reason: "please enter a folder path"}
)

// ValidationError is returned before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

// BusyError is returned when an operation of the same kind is still outstanding.
type BusyError struct {
	Operation string
}

// RequestFailedError means the server answered with a non-success status.
type RequestFailedError struct {
	StatusCode int
	Messages   []string
}

// TransportError means no usable response was obtained.
type TransportError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s already in progress", e.Operation)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

func (e *RequestFailedError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newRequestFailedError(statusCode int, messages []string, fallback string) *RequestFailedError {
	nonEmpty := make([]string, 0, len(messages))
	for _, message := range messages {
		if message = strings.TrimSpace(message); message != "" {
			nonEmpty = append(nonEmpty, message)
		}
	}
	if len(nonEmpty) == 0 {
		nonEmpty = []string{fallback}
	}
	return &RequestFailedError{StatusCode: statusCode, Messages: nonEmpty}
}
