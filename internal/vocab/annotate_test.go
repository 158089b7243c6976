package vocab_test

import (
	"testing"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/vocab"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

func TestAnnotateFillsMissingReadings(t *testing.T) {
	t.Parallel()

	a, err := vocab.NewAnnotator()
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}

	words := []models.ExtractedWord{
		{Term: "学校"},
		{Term: "食べる"},
		{Term: "電車", Reading: "でんしゃ"},
	}
	a.Annotate(words)

	if words[0].Reading != "がっこう" {
		t.Errorf("学校 reading = %q, want がっこう", words[0].Reading)
	}
	if words[1].Reading != "たべる" {
		t.Errorf("食べる reading = %q, want たべる", words[1].Reading)
	}
}

func TestAnnotateRewritesInflectedTerms(t *testing.T) {
	t.Parallel()

	a, err := vocab.NewAnnotator()
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}

	words := []models.ExtractedWord{
		{Term: "食べた"},
		{Term: "学校"}, // nouns stay untouched
	}
	a.Annotate(words)

	if words[0].Term != "食べる" {
		t.Errorf("食べた lemma = %q, want 食べる", words[0].Term)
	}
	if words[0].Reading != "たべる" {
		t.Errorf("lemma reading = %q, want たべる", words[0].Reading)
	}
	if words[1].Term != "学校" {
		t.Errorf("学校 rewritten to %q", words[1].Term)
	}
}

func TestAnnotateKeepsExistingReadings(t *testing.T) {
	t.Parallel()

	a, err := vocab.NewAnnotator()
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}

	words := []models.ExtractedWord{{Term: "電車", Reading: "existing"}}
	a.Annotate(words)
	if words[0].Reading != "existing" {
		t.Errorf("existing reading overwritten: %q", words[0].Reading)
	}
}

func TestAnnotateLeavesUnreadableTermsAlone(t *testing.T) {
	t.Parallel()

	a, err := vocab.NewAnnotator()
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}

	words := []models.ExtractedWord{{Term: "xyzzy"}}
	a.Annotate(words)
	if words[0].Reading != "" {
		t.Errorf("unreadable term got reading %q", words[0].Reading)
	}
}
