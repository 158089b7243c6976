package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// DefaultTimeout is the hard per-request timeout, enforced by this core
// regardless of the provider's own limits.
const DefaultTimeout = 60 * time.Second

// Extractor runs the LLM vision path: one provider call per image, then
// defensive parsing and re-filtering of the reply.
type Extractor struct {
	provider Provider
	timeout  time.Duration
	log      zerolog.Logger
}

// NewExtractor creates an extractor over the given provider. A zero timeout
// selects DefaultTimeout.
func NewExtractor(provider Provider, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{
		provider: provider,
		timeout:  timeout,
		log:      logger.WithComponent("vision"),
	}
}

// Extract sends image to the provider and returns the vocabulary terms found
// in it. locale selects the meaning language ("ko" for Korean, anything else
// English). The reply is parsed defensively and every term is re-run through
// the noise classifier; the model's own filtering is never trusted.
func (e *Extractor) Extract(ctx context.Context, image []byte, locale string) ([]models.ExtractedWord, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.provider.Complete(ctx, image, buildPrompt(locale))
	if err != nil {
		return nil, err
	}

	records, err := parseReply(reply)
	if err != nil {
		// A reply without a parsable array yields zero words, not a failure:
		// the model answered, it just ignored the output contract.
		e.log.Warn().Err(err).Str("provider", e.provider.Name()).
			Msg("unparsable vision reply, treating as zero words")
		return nil, nil
	}

	seen := make(map[string]bool, len(records))
	words := make([]models.ExtractedWord, 0, len(records))
	dropped := 0
	for _, rec := range records {
		term := jptext.Normalize(rec.Term)
		if term == "" || seen[term] {
			continue
		}
		if reason := jptext.Classify(term); reason != jptext.Accepted {
			dropped++
			continue
		}
		seen[term] = true
		words = append(words, models.ExtractedWord{
			Term:      term,
			Reading:   jptext.Normalize(rec.Reading),
			Meaning:   strings.TrimSpace(rec.Meaning),
			JLPTLevel: clampJLPT(rec.JLPTLevel),
			Source:    models.SourceLLM,
		})
		if len(words) >= models.MaxOutputTerms {
			break
		}
	}

	e.log.Debug().
		Str("provider", e.provider.Name()).
		Int("records", len(records)).
		Int("accepted", len(words)).
		Int("rejected", dropped).
		Msg("vision extraction parsed")

	return words, nil
}

// wordRecord is the reply contract. JLPTLevel is decoded loosely because
// models return it as number, string, or null interchangeably.
type wordRecord struct {
	Term      string `json:"term"`
	Reading   string `json:"reading"`
	Meaning   string `json:"meaning"`
	JLPTLevel any    `json:"jlptLevel"`
}

// clampJLPT coerces the loosely-typed JLPT value into 1..5, nulling anything
// out of range instead of rejecting the record.
func clampJLPT(v any) int {
	var level int
	switch t := v.(type) {
	case float64:
		level = int(t)
	case string:
		fmt.Sscanf(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(t)), "N"), "%d", &level)
	default:
		return 0
	}
	if level < 1 || level > 5 {
		return 0
	}
	return level
}

// parseReply locates the first balanced JSON array in reply (providers wrap
// JSON in commentary and code fences), repairing truncated output when
// needed, and decodes it record by record. Malformed records are skipped
// silently.
func parseReply(reply string) ([]wordRecord, error) {
	arr, ok := extractJSONArray(reply)
	if !ok {
		return nil, ErrNoJSONArray
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &raw); err != nil {
		repaired, ok := repairJSONArray(arr)
		if !ok {
			return nil, ErrNoJSONArray
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, ErrNoJSONArray
		}
	}

	records := make([]wordRecord, 0, len(raw))
	for _, msg := range raw {
		var rec wordRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// extractJSONArray returns the first '['..']' substring of s with balanced
// brackets, tracking strings and escapes. When the array never closes (the
// reply was truncated), the tail from the opening bracket is returned for
// repair.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], true
}

// repairJSONArray best-effort repairs a truncated array: everything after the
// last complete top-level element is trimmed and the closing bracket is
// appended.
func repairJSONArray(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	lastComplete := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			// depth 1 means back at the array's top level: an element just
			// completed.
			if depth == 1 {
				lastComplete = i + 1
			}
		}
	}
	if lastComplete == 0 {
		return "[]", true
	}
	return s[:lastComplete] + "]", true
}

// buildPrompt returns the fixed instruction prompt. The output contract
// mirrors part of the noise classifier so most garbage never comes back.
func buildPrompt(locale string) string {
	meaningLang := "English"
	if strings.HasPrefix(strings.ToLower(locale), "ko") {
		meaningLang = "Korean"
	}
	return fmt.Sprintf(`You are a Japanese vocabulary extractor. Look at the image and list the Japanese vocabulary words visible in it.

Return ONLY a JSON array, no commentary, of at most %d objects with exactly these fields:
[{"term": "...", "reading": "...", "meaning": "...", "jlptLevel": 3}]

Rules:
- "term": the word in dictionary form (verbs in plain non-past form).
- "reading": the hiragana reading of the term.
- "meaning": a short meaning in %s.
- "jlptLevel": the JLPT band 1-5, or null if unsure.
- Exclude bare particles, bare prefixes or suffixes (like お or 的), bare inflection endings (like ます or でした), and anything that is not a real standalone word.
- Exclude strings of repeated characters or other OCR-style garbage.
- Handle vertical (top-to-bottom) text correctly.`, models.MaxOutputTerms, meaningLang)
}
