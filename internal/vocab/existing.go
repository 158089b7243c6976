// Package vocab connects the extraction pipeline to the user's stored
// vocabulary: a bulk existing-term resolver and a local dictionary annotator
// that fills readings and dictionary forms for OCR-path terms.
package vocab

import (
	"bufio"
	"context"
	"os"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Resolver looks up which of the given terms the user already owns. The
// pipeline calls it once per extraction with the full candidate list, never
// per term.
type Resolver interface {
	Resolve(ctx context.Context, terms []string) (map[string]bool, error)
}

// NopResolver resolves nothing; used when no vocabulary store is connected.
type NopResolver struct{}

// Resolve returns an empty set.
func (NopResolver) Resolve(ctx context.Context, terms []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

// FileResolver resolves terms against a newline-separated word list file.
type FileResolver struct {
	known map[string]bool
}

// NewFileResolver loads the word list at path. Terms are normalized the same
// way candidates are, so width variants still match.
func NewFileResolver(path string) (*FileResolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	known := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if term := jptext.Normalize(scanner.Text()); term != "" {
			known[term] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &FileResolver{known: known}, nil
}

// Resolve reports which terms are in the loaded list.
func (r *FileResolver) Resolve(ctx context.Context, terms []string) (map[string]bool, error) {
	hits := make(map[string]bool, len(terms))
	for _, term := range terms {
		if r.known[jptext.Normalize(term)] {
			hits[term] = true
		}
	}
	return hits, nil
}

// MarkKnown flags words present in the resolved set. Known words stay in the
// output so the user still sees what was detected, but callers exclude them
// from bulk selection.
func MarkKnown(words []models.ExtractedWord, known map[string]bool) {
	for i := range words {
		if known[words[i].Term] {
			words[i].Known = true
		}
	}
}
