// Package hybrid merges the OCR-path and LLM-path candidate lists. Agreement
// between two independent extraction engines is the strongest precision
// signal available, stronger than either engine's own confidence, so terms
// found by both are boosted above everything found by only one.
package hybrid

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Per-bucket trust boosts, applied before heuristic scoring. Tuned constants;
// their order (both > ocr > llm) is the contract.
const (
	boostBoth    = 3.0
	boostOCROnly = 1.5
	boostLLMOnly = 1.0
)

// Heuristic scorer weights.
const (
	scoreMeaning      = 1.0
	scoreReading      = 0.5
	scoreKanji        = 0.5
	scoreJLPTKnown    = 0.3
	scorePerRune      = 0.1
	scoreRuneCap      = 6
	scoreKnownPenalty = 2.0
)

// Merger combines engine outputs in hybrid mode.
type Merger struct {
	log zerolog.Logger
}

// NewMerger creates a merger.
func NewMerger() *Merger {
	return &Merger{log: logger.WithComponent("hybrid")}
}

// Merge partitions ocrWords and llmWords by term equality into both /
// OCR-only / LLM-only buckets, merges fields for agreeing terms, scores each
// bucket independently, and concatenates them in descending trust order,
// capped at models.MaxOutputTerms. known marks terms already owned by the
// user; they are penalized in scoring and flagged, never removed.
func (m *Merger) Merge(ocrWords, llmWords []models.ExtractedWord, known map[string]bool) []models.ExtractedWord {
	llmByTerm := make(map[string]models.ExtractedWord, len(llmWords))
	for _, w := range llmWords {
		if _, dup := llmByTerm[w.Term]; !dup {
			llmByTerm[w.Term] = w
		}
	}

	var both, ocrOnly, llmOnly []models.ExtractedWord
	seenOCR := make(map[string]bool, len(ocrWords))
	for _, w := range ocrWords {
		if seenOCR[w.Term] {
			continue
		}
		seenOCR[w.Term] = true
		if lw, ok := llmByTerm[w.Term]; ok {
			both = append(both, mergeFields(w, lw))
		} else {
			w.Source = models.SourceOCR
			ocrOnly = append(ocrOnly, w)
		}
	}
	seenLLM := make(map[string]bool, len(llmWords))
	for _, w := range llmWords {
		if seenOCR[w.Term] || seenLLM[w.Term] {
			continue
		}
		seenLLM[w.Term] = true
		w.Source = models.SourceLLM
		llmOnly = append(llmOnly, w)
	}

	scoreBucket(both, boostBoth, known)
	scoreBucket(ocrOnly, boostOCROnly, known)
	scoreBucket(llmOnly, boostLLMOnly, known)

	merged := make([]models.ExtractedWord, 0, len(both)+len(ocrOnly)+len(llmOnly))
	merged = append(merged, both...)
	merged = append(merged, ocrOnly...)
	merged = append(merged, llmOnly...)
	if len(merged) > models.MaxOutputTerms {
		merged = merged[:models.MaxOutputTerms]
	}

	m.log.Debug().
		Int("both", len(both)).
		Int("ocr_only", len(ocrOnly)).
		Int("llm_only", len(llmOnly)).
		Int("merged", len(merged)).
		Msg("ensemble merge complete")

	return merged
}

// mergeFields combines the two engines' records for one term: the richer
// (longer) meaning wins, a missing reading is filled from whichever side has
// it, and a known JLPT level beats an unknown one.
func mergeFields(ocr, llm models.ExtractedWord) models.ExtractedWord {
	out := ocr
	out.Source = models.SourceBoth
	if len(llm.Meaning) > len(out.Meaning) {
		out.Meaning = llm.Meaning
	}
	if out.Reading == "" {
		out.Reading = llm.Reading
	}
	if out.JLPTLevel == 0 {
		out.JLPTLevel = llm.JLPTLevel
	}
	return out
}

// scoreBucket assigns boost + heuristic score to every word and sorts the
// bucket in place, descending, with deterministic tie-breaks.
func scoreBucket(words []models.ExtractedWord, boost float64, known map[string]bool) {
	for i := range words {
		words[i].Known = known[words[i].Term]
		words[i].Score = boost + scoreWord(words[i])
	}
	sort.Slice(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ak, bk := jptext.HasKanji(a.Term), jptext.HasKanji(b.Term)
		if ak != bk {
			return ak
		}
		al, bl := len([]rune(a.Term)), len([]rune(b.Term))
		if al != bl {
			return al > bl
		}
		return a.Term < b.Term
	})
}

// scoreWord is the shared heuristic candidate scorer: field completeness,
// kanji presence, JLPT knowledge and length raise the score; terms the user
// already owns sink.
func scoreWord(w models.ExtractedWord) float64 {
	score := 0.0
	if w.Meaning != "" {
		score += scoreMeaning
	}
	if w.Reading != "" {
		score += scoreReading
	}
	if jptext.HasKanji(w.Term) {
		score += scoreKanji
	}
	if w.JLPTLevel != 0 {
		score += scoreJLPTKnown
	}
	n := len([]rune(w.Term))
	if n > scoreRuneCap {
		n = scoreRuneCap
	}
	score += float64(n) * scorePerRune
	if w.Known {
		score -= scoreKnownPenalty
	}
	return score
}
