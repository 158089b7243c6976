package extract

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// RankStats carries diagnostic counters for one ranking pass. Not user
// facing; logged at debug level for observability.
type RankStats struct {
	Collected           int
	RejectedByLength    int
	RejectedByPattern   int
	SuppressedFragments int
	RejectedByCap       int
}

// Rank collapses every scored token collected across variants and combination
// passes into the final ordered candidate list:
//
//  1. group by normalized text keeping the maximum confidence per group,
//  2. drop 1-rune non-kanji groups and groups the noise classifier rejects,
//  3. suppress short fragments subsumed by longer surviving tokens,
//  4. sort by confidence desc, kanji presence, length desc,
//  5. cap at models.MaxOutputTerms.
func Rank(tokens []models.ScoredToken) ([]models.ScoredToken, RankStats) {
	stats := RankStats{Collected: len(tokens)}

	best := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		text := jptext.Normalize(t.Text)
		if text == "" {
			continue
		}
		if cur, ok := best[text]; !ok || t.Confidence > cur {
			best[text] = t.Confidence
		}
	}

	survivors := make([]models.ScoredToken, 0, len(best))
	for text, conf := range best {
		runes := []rune(text)
		if len(runes) == 1 && !jptext.IsKanji(runes[0]) {
			stats.RejectedByLength++
			continue
		}
		if jptext.Classify(text) != jptext.Accepted {
			stats.RejectedByPattern++
			continue
		}
		survivors = append(survivors, models.ScoredToken{Text: text, Confidence: conf})
	}

	kept := make([]models.ScoredToken, 0, len(survivors))
	for _, t := range survivors {
		if suppressedAsFragment(t.Text, survivors) {
			stats.SuppressedFragments++
			continue
		}
		kept = append(kept, t)
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		ak, bk := jptext.HasKanji(a.Text), jptext.HasKanji(b.Text)
		if ak != bk {
			return ak
		}
		al, bl := runeLen(a.Text), runeLen(b.Text)
		if al != bl {
			return al > bl
		}
		return a.Text < b.Text
	})

	if len(kept) > models.MaxOutputTerms {
		stats.RejectedByCap = len(kept) - models.MaxOutputTerms
		kept = kept[:models.MaxOutputTerms]
	}
	return kept, stats
}

// suppressedAsFragment reports whether text is a partial-match leftover of a
// correctly combined compound. A token is only ever suppressed by a strictly
// longer survivor that contains it, so the longest occurrence always stays.
//
//   - single kanji: suppressed when a longer survivor contains it past its
//     head position (the head kanji of a compound stays, per the single-kanji
//     rule; a trailing remainder like 校 inside 学校 goes),
//   - pure kana of length ≤3: suppressed by any longer containing survivor,
//   - kanji-only chunks of length ≤2: suppressed when the containing survivor
//     has length ≥3.
func suppressedAsFragment(text string, survivors []models.ScoredToken) bool {
	n := runeLen(text)
	kanaShort := jptext.IsKanaOnly(text) && n <= 3
	kanjiChunk := jptext.IsKanjiOnly(text) && n <= 2 && n > 1

	if n != 1 && !kanaShort && !kanjiChunk {
		return false
	}

	for _, other := range survivors {
		if other.Text == text || runeLen(other.Text) <= n {
			continue
		}
		idx := strings.Index(other.Text, text)
		if idx < 0 {
			continue
		}
		switch {
		case n == 1 && jptext.IsKanjiOnly(text):
			// Head position does not count as a fragment occurrence; look
			// for the kanji anywhere past the first rune.
			_, size := utf8.DecodeRuneInString(other.Text)
			if strings.Contains(other.Text[size:], text) {
				return true
			}
		case kanaShort:
			return true
		case kanjiChunk:
			if runeLen(other.Text) >= 3 {
				return true
			}
		}
	}
	return false
}
