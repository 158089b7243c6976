package jptext_test

import (
	"testing"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		term string
		want jptext.Reason
	}{
		// Plausible vocabulary passes.
		{"食べる", jptext.Accepted},
		{"学校", jptext.Accepted},
		{"コーヒー", jptext.Accepted},
		{"新幹線", jptext.Accepted},
		{"山の手", jptext.Accepted},

		// A lone kanji is always a valid vocabulary unit, even one the affix
		// lists also carry.
		{"水", jptext.Accepted},
		{"学", jptext.Accepted},
		{"的", jptext.Accepted},

		// Degenerate input.
		{"", jptext.ReasonEmpty},
		{"   ", jptext.ReasonEmpty},
		{"hello", jptext.ReasonNoJapanese},
		{"123", jptext.ReasonNoJapanese},

		// Bare affixes.
		{"お", jptext.ReasonAffixOnly},
		{"さん", jptext.ReasonAffixOnly},

		// Bare inflection endings.
		{"ます", jptext.ReasonInflectionOnly},
		{"でした", jptext.ReasonInflectionOnly},

		// Grammatical words.
		{"の", jptext.ReasonFunctionWord},
		{"これ", jptext.ReasonFunctionWord},
		{"そして", jptext.ReasonFunctionWord},

		// Structural noise.
		{"ーー", jptext.ReasonNoisePattern},       // elongation run
		{"ああああ", jptext.ReasonNoisePattern},     // repeated character
		{"〜〜メニュー", jptext.ReasonNoisePattern},  // edge affix marks
		{"ジュー", jptext.ReasonNoisePattern},      // short katakana with trailing ー
		{"リリ", jptext.ReasonNoisePattern},       // repeated character
		{"ガリリ", jptext.ReasonNoisePattern},      // vertical layout artifact
		{"学は", jptext.ReasonNoisePattern},       // kanji + bare particle
		{"行きます", jptext.ReasonNoisePattern},     // conjugated form, not dictionary form
		{"勉強し", jptext.ReasonNoisePattern},      // suru-verb stem
		{"カメラが", jptext.ReasonNoisePattern},     // particle at the end
		{"本を読む", jptext.ReasonNoisePattern},     // sentence fragment with mid particle
	}
	for _, tt := range tests {
		if got := jptext.Classify(tt.term); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestClassifyNormalizesFirst(t *testing.T) {
	t.Parallel()

	// Full-width and padded forms classify the same as their clean forms.
	if got := jptext.Classify("  学校  "); got != jptext.Accepted {
		t.Errorf("Classify with padding = %v, want Accepted", got)
	}
	if got := jptext.Classify("ｺｰﾋｰ"); got != jptext.Accepted {
		t.Errorf("Classify(half-width コーヒー) = %v, want Accepted", got)
	}
}

func TestNoiseRuleName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		term string
		want string
	}{
		{"ーー", "elongation_run"},
		{"ああああ", "repeated_char"},
		{"リリ", "repeated_char"}, // repeated_char fires before vertical_artifact
		{"ガリリ", "vertical_artifact"},
		{"学は", "kanji_particle"},
		{"行きます", "inflection_tail"},
		{"勉強し", "masu_stem"},
		{"学校が", "kanji_particle"},
		{"カメラが", "particle_end"},
		{"本を読む", "mid_particle_fragment"},
		{"食べる", ""}, // accepted, no rule fires
	}
	for _, tt := range tests {
		if got := jptext.NoiseRuleName(tt.term); got != tt.want {
			t.Errorf("NoiseRuleName(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

func TestClassifyKanjiHiraMixExemptsConnectiveNo(t *testing.T) {
	t.Parallel()

	// Compound nouns joined by の survive; other short kanji-hira-kanji
	// sandwiches are line-join artifacts.
	if got := jptext.Classify("山の手"); got != jptext.Accepted {
		t.Errorf("Classify(山の手) = %v, want Accepted", got)
	}
	if got := jptext.Classify("飲で水"); got != jptext.ReasonNoisePattern {
		t.Errorf("Classify(飲で水) = %v, want ReasonNoisePattern", got)
	}
}
