package extract_test

import (
	"reflect"
	"testing"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/extract"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

func texts(tokens []models.ScoredToken) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func contains(tokens []models.ScoredToken, text string) bool {
	for _, t := range tokens {
		if t.Text == text {
			return true
		}
	}
	return false
}

func TestRankDeduplicatesKeepingMaxConfidence(t *testing.T) {
	t.Parallel()

	ranked, _ := extract.Rank([]models.ScoredToken{
		{Text: "学校", Confidence: 70},
		{Text: "学校", Confidence: 95},
		{Text: "学校", Confidence: 80},
	})
	if len(ranked) != 1 || ranked[0].Confidence != 95 {
		t.Errorf("got %v, want single 学校 at confidence 95", ranked)
	}
}

func TestRankSuppressesTrailingKanjiFragment(t *testing.T) {
	t.Parallel()

	// 校 only occurs as the tail of 学校 and is suppressed; 学 heads the
	// compound and survives as its own word.
	ranked, stats := extract.Rank([]models.ScoredToken{
		{Text: "学", Confidence: 90},
		{Text: "校", Confidence: 85},
		{Text: "学校", Confidence: 88},
	})

	if !contains(ranked, "学校") || !contains(ranked, "学") {
		t.Fatalf("expected 学校 and 学 to survive, got %v", texts(ranked))
	}
	if contains(ranked, "校") {
		t.Errorf("校 should be suppressed as a fragment of 学校, got %v", texts(ranked))
	}
	if stats.SuppressedFragments != 1 {
		t.Errorf("SuppressedFragments = %d, want 1", stats.SuppressedFragments)
	}
}

func TestRankSuppressesShortKanaFragments(t *testing.T) {
	t.Parallel()

	ranked, _ := extract.Rank([]models.ScoredToken{
		{Text: "フレ", Confidence: 90},
		{Text: "ッシュ", Confidence: 90},
		{Text: "フレッシュ", Confidence: 85},
	})

	if !contains(ranked, "フレッシュ") {
		t.Fatalf("フレッシュ missing from %v", texts(ranked))
	}
	if contains(ranked, "フレ") || contains(ranked, "ッシュ") {
		t.Errorf("kana fragments should be suppressed, got %v", texts(ranked))
	}
}

func TestRankSuppressesKanjiPairInsideLongerCompound(t *testing.T) {
	t.Parallel()

	ranked, _ := extract.Rank([]models.ScoredToken{
		{Text: "新幹", Confidence: 90},
		{Text: "新幹線", Confidence: 88},
	})
	if contains(ranked, "新幹") {
		t.Errorf("新幹 should be suppressed inside 新幹線, got %v", texts(ranked))
	}
	if !contains(ranked, "新幹線") {
		t.Errorf("新幹線 missing from %v", texts(ranked))
	}
}

func TestRankDropsSingleNonKanjiAndNoise(t *testing.T) {
	t.Parallel()

	ranked, stats := extract.Rank([]models.ScoredToken{
		{Text: "あ", Confidence: 99},    // single non-kanji rune
		{Text: "リリリ", Confidence: 99},  // noise pattern
		{Text: "食べる", Confidence: 90},
	})
	if len(ranked) != 1 || ranked[0].Text != "食べる" {
		t.Fatalf("got %v, want only 食べる", texts(ranked))
	}
	if stats.RejectedByLength != 1 {
		t.Errorf("RejectedByLength = %d, want 1", stats.RejectedByLength)
	}
	if stats.RejectedByPattern != 1 {
		t.Errorf("RejectedByPattern = %d, want 1", stats.RejectedByPattern)
	}
}

func TestRankCapsOutput(t *testing.T) {
	t.Parallel()

	var tokens []models.ScoredToken
	for i := 0; i < 60; i++ {
		// Distinct two-kanji strings with descending confidence.
		text := string([]rune{rune(0x4E00 + 2*i), rune(0x4E01 + 2*i)})
		tokens = append(tokens, models.ScoredToken{Text: text, Confidence: float64(100 - i)})
	}

	ranked, stats := extract.Rank(tokens)
	if len(ranked) != models.MaxOutputTerms {
		t.Fatalf("len = %d, want %d", len(ranked), models.MaxOutputTerms)
	}
	if stats.RejectedByCap != 10 {
		t.Errorf("RejectedByCap = %d, want 10", stats.RejectedByCap)
	}
	// The highest-confidence tokens survive the cap.
	if ranked[0].Confidence != 100 {
		t.Errorf("top confidence = %v, want 100", ranked[0].Confidence)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	t.Parallel()

	tokens := []models.ScoredToken{
		{Text: "時間", Confidence: 80},
		{Text: "電車", Confidence: 80},
		{Text: "たまご", Confidence: 80},
		{Text: "食べる", Confidence: 80},
	}
	first, _ := extract.Rank(tokens)
	for i := 0; i < 10; i++ {
		again, _ := extract.Rank(tokens)
		if !reflect.DeepEqual(texts(first), texts(again)) {
			t.Fatalf("run %d ordering differs: %v vs %v", i, texts(first), texts(again))
		}
	}
	// Kanji presence then length then text break the confidence tie.
	want := []string{"食べる", "時間", "電車", "たまご"}
	if !reflect.DeepEqual(texts(first), want) {
		t.Errorf("tie-break order = %v, want %v", texts(first), want)
	}
}

func TestRankEmptyInput(t *testing.T) {
	t.Parallel()

	ranked, stats := extract.Rank(nil)
	if len(ranked) != 0 {
		t.Errorf("got %v, want empty", ranked)
	}
	if stats.Collected != 0 {
		t.Errorf("Collected = %d, want 0", stats.Collected)
	}
}
