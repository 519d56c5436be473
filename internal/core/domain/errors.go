package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced document does not exist.
	ErrNotFound = errors.New("domain: not found")
	// ErrInvalidInput indicates a request was rejected before reaching the engine.
	ErrInvalidInput = errors.New("domain: invalid input")
	// ErrUpstreamUnavailable indicates the search engine failed or could not be reached.
	ErrUpstreamUnavailable = errors.New("domain: upstream unavailable")
)

// ValidationError describes a rejected request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid returns a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UpstreamError reports an engine-level failure: a transport error, a
// timeout, or an error response such as a malformed query or a missing index.
type UpstreamError struct {
	Op     string
	Status int    // HTTP status from the engine, 0 when no response arrived
	Type   string // engine error type, e.g. index_not_found_exception
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: engine unavailable: %v", e.Op, e.Err)
	case e.Type != "":
		return fmt.Sprintf("%s: engine error [%d] %s: %s", e.Op, e.Status, e.Type, e.Reason)
	default:
		return fmt.Sprintf("%s: engine error [%d]", e.Op, e.Status)
	}
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
