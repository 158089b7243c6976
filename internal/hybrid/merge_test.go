package hybrid_test

import (
	"testing"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/hybrid"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

func word(term string) models.ExtractedWord {
	return models.ExtractedWord{Term: term}
}

func TestMergePartitionsAndOrdersBuckets(t *testing.T) {
	t.Parallel()

	ocr := []models.ExtractedWord{word("学校"), word("電車")}
	llm := []models.ExtractedWord{
		{Term: "学校", Reading: "がっこう", Meaning: "school", JLPTLevel: 5},
		{Term: "水", Meaning: "water"},
	}

	merged := hybrid.NewMerger().Merge(ocr, llm, nil)
	if len(merged) != 3 {
		t.Fatalf("got %d words, want 3", len(merged))
	}

	// Agreement first, then OCR-only, then LLM-only.
	if merged[0].Term != "学校" || merged[0].Source != models.SourceBoth {
		t.Errorf("first = %+v, want 学校 from both engines", merged[0])
	}
	if merged[1].Term != "電車" || merged[1].Source != models.SourceOCR {
		t.Errorf("second = %+v, want OCR-only 電車", merged[1])
	}
	if merged[2].Term != "水" || merged[2].Source != models.SourceLLM {
		t.Errorf("third = %+v, want LLM-only 水", merged[2])
	}
}

func TestMergeFillsFieldsFromAgreeingEngines(t *testing.T) {
	t.Parallel()

	ocr := []models.ExtractedWord{{Term: "鉄道", Meaning: "rail"}}
	llm := []models.ExtractedWord{{Term: "鉄道", Reading: "てつどう", Meaning: "railway line", JLPTLevel: 3}}

	merged := hybrid.NewMerger().Merge(ocr, llm, nil)
	if len(merged) != 1 {
		t.Fatalf("got %d words, want 1", len(merged))
	}
	w := merged[0]
	if w.Reading != "てつどう" {
		t.Errorf("reading = %q, want filled from LLM", w.Reading)
	}
	if w.Meaning != "railway line" {
		t.Errorf("meaning = %q, want the longer one", w.Meaning)
	}
	if w.JLPTLevel != 3 {
		t.Errorf("jlpt = %d, want 3", w.JLPTLevel)
	}
}

func TestMergeMarksKnownWithoutRemoving(t *testing.T) {
	t.Parallel()

	ocr := []models.ExtractedWord{word("学校"), word("電車")}
	merged := hybrid.NewMerger().Merge(ocr, nil, map[string]bool{"学校": true})

	byTerm := make(map[string]models.ExtractedWord)
	for _, w := range merged {
		byTerm[w.Term] = w
	}
	school, ok := byTerm["学校"]
	if !ok {
		t.Fatal("known word was removed from output")
	}
	if !school.Known {
		t.Error("学校 not flagged as known")
	}
	// Known words sink below unknown ones of the same bucket.
	if merged[0].Term != "電車" {
		t.Errorf("first = %q, want the unknown word 電車", merged[0].Term)
	}
}

func TestMergeDeduplicatesWithinEngines(t *testing.T) {
	t.Parallel()

	ocr := []models.ExtractedWord{word("学校"), word("学校")}
	llm := []models.ExtractedWord{word("水"), word("水")}
	merged := hybrid.NewMerger().Merge(ocr, llm, nil)
	if len(merged) != 2 {
		t.Errorf("got %d words, want 2", len(merged))
	}
}

func TestMergeCapsOutput(t *testing.T) {
	t.Parallel()

	var ocr []models.ExtractedWord
	for i := 0; i < 40; i++ {
		ocr = append(ocr, word(string([]rune{rune(0x4E00 + 2*i), rune(0x4E01 + 2*i)})))
	}
	var llm []models.ExtractedWord
	for i := 0; i < 40; i++ {
		llm = append(llm, word(string([]rune{rune(0x5000 + 2*i), rune(0x5001 + 2*i)})))
	}

	merged := hybrid.NewMerger().Merge(ocr, llm, nil)
	if len(merged) != models.MaxOutputTerms {
		t.Fatalf("got %d words, want %d", len(merged), models.MaxOutputTerms)
	}
	// The cap eats into the lowest-trust bucket only.
	for _, w := range merged[:40] {
		if w.Source != models.SourceOCR {
			t.Fatalf("OCR bucket should fill first, found %q from %q", w.Term, w.Source)
		}
	}
}
