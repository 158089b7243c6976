// Package recognize runs a script-aware OCR engine over preprocessed image
// variants and returns structured text with per-word confidence.
//
// The engine is a single stateful resource: it is created once per extraction
// run, reused across all variants of all images in the run, and released when
// the run completes or is canceled. Recognition is a blocking call; callers
// run it off the request path and cancel it through the context.
//
// Required Environment Variables (Google Cloud Vision backend):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package recognize

import (
	"context"

	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Recognizer is the extraction pipeline's view of an OCR engine.
type Recognizer interface {
	// Recognize runs text detection over one image variant. It observes ctx
	// for cooperative cancellation and returns the recognized structure or an
	// error. A variant with no detectable text returns ErrNoText.
	Recognize(ctx context.Context, variant models.ImageVariant) (*Result, error)

	// Close releases the engine resource. Recognize must not be called after
	// Close.
	Close() error
}

// Result is the recognized text of one variant, organized as
// blocks → paragraphs → lines → words.
type Result struct {
	Blocks []Block
}

// Block is a spatially coherent region of recognized text.
type Block struct {
	Paragraphs []Paragraph
}

// Paragraph groups the lines of one block.
type Paragraph struct {
	Lines []Line
}

// Line is a single visual line of text; the token combiner never merges
// across lines.
type Line struct {
	Words []Word
}

// Word carries the raw engine text and the engine-native confidence on a
// 0–100 scale.
type Word struct {
	Text       string
	Confidence float64
}

// Lines flattens the result into its lines, in reading order.
func (r *Result) Lines() []Line {
	var lines []Line
	for _, b := range r.Blocks {
		for _, p := range b.Paragraphs {
			lines = append(lines, p.Lines...)
		}
	}
	return lines
}

// PlainText joins all recognized words with spaces, line by line. Diagnostic
// output only; the pipeline works on the structured form.
func (r *Result) PlainText() string {
	var out []byte
	for _, line := range r.Lines() {
		for i, w := range line.Words {
			if i > 0 {
				out = append(out, ' ')
			}
			out = append(out, w.Text...)
		}
		out = append(out, '\n')
	}
	return string(out)
}
