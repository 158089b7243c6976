package models

import "image"

// WordSource identifies which extraction engine(s) produced a word.
type WordSource string

const (
	// SourceOCR marks words found only by the OCR path.
	SourceOCR WordSource = "ocr"
	// SourceLLM marks words found only by the LLM vision path.
	SourceLLM WordSource = "llm"
	// SourceBoth marks words found by both engines (hybrid mode).
	SourceBoth WordSource = "both"
)

// ScoredToken is a raw candidate produced by the recognition adapter or the
// token combiner. Confidence is a unitless positive number (engine confidence
// scaled by variant weight and combination discounts); no upper bound is
// enforced.
type ScoredToken struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ImageVariant is one preprocessed copy of an input image. Weight reflects how
// much recognition results from this variant are trusted, in (0, 1].
// Variants are immutable once built and live for a single extraction call.
type ImageVariant struct {
	ID     string
	Image  image.Image
	Weight float64
}

// ExtractedWord is the unit of output for the LLM path and the hybrid merge.
// For the pure OCR path only Term is populated; Reading and Meaning are filled
// in later by a dictionary collaborator.
type ExtractedWord struct {
	Term    string `json:"term"`
	Reading string `json:"reading,omitempty"`
	Meaning string `json:"meaning,omitempty"`

	// JLPTLevel is the Japanese-Language Proficiency Test band (1..5,
	// N5 easiest). Zero means unknown.
	JLPTLevel int `json:"jlptLevel,omitempty"`

	// Source records which engine(s) produced the word.
	Source WordSource `json:"source,omitempty"`

	// Known is set when the term already exists in the user's vocabulary.
	// Known words stay in the output but are excluded from bulk selection.
	Known bool `json:"known,omitempty"`

	// Score is the heuristic ranking score assigned by the ensemble merger.
	Score float64 `json:"-"`
}

// MaxOutputTerms caps the final candidate list of a single extraction.
const MaxOutputTerms = 50
