// Package vision extracts vocabulary from an image through a vision-capable
// language model. Provider backends are interchangeable; the prompt, timeout
// enforcement, and reply parsing are provider-agnostic. Replies are never
// trusted: every extracted term is renormalized and re-run through the noise
// classifier.
package vision

import (
	"context"
	"net/http"
)

// Provider shapes the request for one LLM backend and extracts the reply
// text. It knows nothing about prompts, timeouts, or output parsing.
type Provider interface {
	// Name returns the provider identifier ("openai", "anthropic", "gemini").
	Name() string

	// Complete sends the image and instruction prompt and returns the raw
	// reply text. Implementations must observe ctx for cancellation and
	// deadline and return a *ProviderError on transport or status failures.
	Complete(ctx context.Context, image []byte, prompt string) (string, error)
}

// detectMIME sniffs the image payload's content type, defaulting to PNG for
// anything unrecognized.
func detectMIME(image []byte) string {
	mime := http.DetectContentType(image)
	switch mime {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return mime
	}
	return "image/png"
}
