// Package extract turns per-variant recognition output into a ranked,
// deduplicated candidate term list: the token combiner reassembles words the
// engine over-split, the ranker collapses duplicates across variants, and the
// pipeline coordinator owns job lifecycle, progress and cancellation.
package extract

import (
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/recognize"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Combination discount factors. The engine emits Japanese script as
// over-segmented single glyphs and broken katakana syllables; compounds must
// be reconstructed before filtering or legitimate vocabulary is lost. Each
// synthetic candidate carries the average confidence of its parts scaled by
// the discount for its combination depth. Tuned constants.
const (
	katakanaPairDiscount   = 0.90
	katakanaTripleDiscount = 0.85

	kanjiPairDiscount   = 0.95
	kanjiTripleDiscount = 0.90
	kanjiQuadDiscount   = 0.85

	kanjiHiraDiscount       = 0.93
	kanjiHiraExtendDiscount = 0.88
	kanjiHiraKanjiDiscount  = 0.90

	// Combined katakana chains shorter than 3 or longer than 10 runes are
	// not plausible loanwords.
	katakanaMinLen = 3
	katakanaMaxLen = 10

	// shortHiraganaMax bounds the hiragana tail glued onto a kanji stem.
	shortHiraganaMax = 4

	// connectiveParticle is the only hiragana token allowed to join two kanji
	// tokens into a compound (山の手). Anything looser glues an inflection tail
	// to the following word (食 + べる + 学校).
	connectiveParticle = "の"
)

// CombineLine converts one recognized line into scored primitive tokens plus
// the synthetic combinations of the three merge passes. Tokens are never
// merged across lines. variantWeight scales the engine confidence.
func CombineLine(line recognize.Line, variantWeight float64) []models.ScoredToken {
	primitives := primitiveTokens(line, variantWeight)
	if len(primitives) == 0 {
		return nil
	}

	out := make([]models.ScoredToken, 0, len(primitives)*2)
	out = append(out, primitives...)
	out = append(out, combineKatakanaChains(primitives)...)
	out = append(out, combineKanjiChains(primitives)...)
	out = append(out, combineKanjiHiragana(primitives)...)
	return out
}

// CombineResult applies CombineLine to every line of a recognition result.
func CombineResult(res *recognize.Result, variantWeight float64) []models.ScoredToken {
	var out []models.ScoredToken
	for _, line := range res.Lines() {
		out = append(out, CombineLine(line, variantWeight)...)
	}
	return out
}

// primitiveTokens filters a line's words to those containing Japanese script
// and splits each into script runs, preserving order.
func primitiveTokens(line recognize.Line, variantWeight float64) []models.ScoredToken {
	var tokens []models.ScoredToken
	for _, word := range line.Words {
		if !jptext.HasJapanese(word.Text) {
			continue
		}
		conf := word.Confidence * variantWeight
		for _, run := range jptext.SplitScriptRuns(word.Text) {
			tokens = append(tokens, models.ScoredToken{Text: run, Confidence: conf})
		}
	}
	return tokens
}

// combineKatakanaChains merges adjacent katakana-only tokens pairwise and
// triple-wise. Broken loanwords (フレ + ッシュ) are the most common OCR split.
func combineKatakanaChains(tokens []models.ScoredToken) []models.ScoredToken {
	var out []models.ScoredToken
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if !jptext.IsKatakanaOnly(a.Text) || !jptext.IsKatakanaOnly(b.Text) {
			continue
		}
		pair := a.Text + b.Text
		if n := runeLen(pair); n >= katakanaMinLen && n <= katakanaMaxLen {
			out = append(out, models.ScoredToken{
				Text:       pair,
				Confidence: avg(a.Confidence, b.Confidence) * katakanaPairDiscount,
			})
		}
		if i+2 < len(tokens) && jptext.IsKatakanaOnly(tokens[i+2].Text) {
			c := tokens[i+2]
			triple := pair + c.Text
			if n := runeLen(triple); n >= katakanaMinLen && n <= katakanaMaxLen {
				out = append(out, models.ScoredToken{
					Text:       triple,
					Confidence: avg(a.Confidence, b.Confidence, c.Confidence) * katakanaTripleDiscount,
				})
			}
		}
	}
	return out
}

// combineKanjiChains merges runs of adjacent single-kanji tokens 2-, 3- and
// 4-wise, reconstructing compounds the engine emitted glyph by glyph.
func combineKanjiChains(tokens []models.ScoredToken) []models.ScoredToken {
	singleKanji := func(t models.ScoredToken) bool {
		return runeLen(t.Text) == 1 && jptext.IsKanjiOnly(t.Text)
	}
	discounts := map[int]float64{
		2: kanjiPairDiscount,
		3: kanjiTripleDiscount,
		4: kanjiQuadDiscount,
	}

	var out []models.ScoredToken
	for i := range tokens {
		if !singleKanji(tokens[i]) {
			continue
		}
		for size := 2; size <= 4; size++ {
			if i+size > len(tokens) {
				break
			}
			ok := true
			text := ""
			confSum := 0.0
			for _, t := range tokens[i : i+size] {
				if !singleKanji(t) {
					ok = false
					break
				}
				text += t.Text
				confSum += t.Confidence
			}
			if !ok {
				break
			}
			out = append(out, models.ScoredToken{
				Text:       text,
				Confidence: confSum / float64(size) * discounts[size],
			})
		}
	}
	return out
}

// combineKanjiHiragana reattaches short hiragana inflections to kanji stems
// (食 + べる) and joins connective-particle compounds (山 + の + 手).
func combineKanjiHiragana(tokens []models.ScoredToken) []models.ScoredToken {
	var out []models.ScoredToken
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if !jptext.HasKanji(a.Text) {
			continue
		}
		if jptext.IsHiraganaOnly(b.Text) && runeLen(b.Text) <= shortHiraganaMax {
			out = append(out, models.ScoredToken{
				Text:       a.Text + b.Text,
				Confidence: avg(a.Confidence, b.Confidence) * kanjiHiraDiscount,
			})
			if i+2 < len(tokens) {
				c := tokens[i+2]
				if jptext.IsHiraganaOnly(c.Text) && runeLen(c.Text) <= shortHiraganaMax {
					out = append(out, models.ScoredToken{
						Text:       a.Text + b.Text + c.Text,
						Confidence: avg(a.Confidence, b.Confidence, c.Confidence) * kanjiHiraExtendDiscount,
					})
				}
			}
		}
		if i+2 < len(tokens) {
			c := tokens[i+2]
			if b.Text == connectiveParticle && jptext.HasKanji(c.Text) {
				out = append(out, models.ScoredToken{
					Text:       a.Text + b.Text + c.Text,
					Confidence: avg(a.Confidence, b.Confidence, c.Confidence) * kanjiHiraKanjiDiscount,
				})
			}
		}
	}
	return out
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func avg(vals ...float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
