package vision

import (
	"errors"
	"fmt"
)

// Common vision extraction errors
var (
	// ErrMissingAPIKey is returned when the selected provider has no API key
	// configured.
	ErrMissingAPIKey = errors.New("missing API key for vision provider")

	// ErrEmptyReply is returned when the provider reply contains no text.
	ErrEmptyReply = errors.New("provider returned an empty reply")

	// ErrTimeout is returned when the request exceeded the configured hard
	// timeout. Treated identically to a network failure by callers.
	ErrTimeout = errors.New("vision request timed out")

	// ErrBadStatus is returned on a non-2xx provider response.
	ErrBadStatus = errors.New("provider returned a non-success status")

	// ErrNoJSONArray is returned when no balanced JSON array can be located
	// in the reply, even after repair.
	ErrNoJSONArray = errors.New("no parsable JSON array in provider reply")
)

// ProviderError wraps errors with context about the failed provider call.
type ProviderError struct {
	// Provider is the provider name ("openai", "anthropic", "gemini").
	Provider string

	// Op is the operation that failed.
	Op string

	// StatusCode is the HTTP status, when the failure was a non-2xx response.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vision: %s %s failed with status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("vision: %s %s failed: %v", e.Provider, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *ProviderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
