package recognize

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrRecognitionFailed is returned when the Vision API fails to process a variant.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrNoText is returned when a variant contains no detectable text.
	ErrNoText = errors.New("no text detected in image")

	// ErrEncodeImage is returned when an image variant cannot be encoded for the engine.
	ErrEncodeImage = errors.New("failed to encode image variant")

	// ErrClosed is returned when Recognize is called after Close.
	ErrClosed = errors.New("recognizer is closed")
)

// RecognitionError wraps errors with context about the failed recognition call.
type RecognitionError struct {
	// Op is the operation that failed (e.g. "Recognize", "NewVisionRecognizer").
	Op string

	// VariantID identifies the image variant being processed, if any.
	VariantID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.VariantID != "" {
		return fmt.Sprintf("recognize: %s failed on variant %q: %v", e.Op, e.VariantID, e.Err)
	}
	return fmt.Sprintf("recognize: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *RecognitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// wrapError wraps err as a RecognitionError unless it already is one.
func wrapError(op, variantID string, err error) error {
	if err == nil {
		return nil
	}
	var rerr *RecognitionError
	if errors.As(err, &rerr) {
		return err
	}
	return &RecognitionError{Op: op, VariantID: variantID, Err: err}
}
