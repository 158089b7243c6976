// Package jptext provides Japanese script analysis for OCR candidate terms:
// rune classification across the hiragana, katakana and kanji blocks, NFKC
// normalization, script-run splitting, and the rule-based noise classifier
// that decides whether a raw candidate string is a plausible vocabulary term.
package jptext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IsKanji reports whether r is a kanji character. Covers the CJK Unified
// Ideographs block, Extension A, and the iteration mark 々 which only ever
// appears inside kanji words.
func IsKanji(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		r == '々'
}

// IsHiragana reports whether r is a hiragana character.
func IsHiragana(r rune) bool {
	return r >= 0x3041 && r <= 0x3096
}

// IsKatakana reports whether r is a katakana character. The long-vowel mark ー
// counts as katakana since it only occurs inside katakana words.
func IsKatakana(r rune) bool {
	return (r >= 0x30A1 && r <= 0x30FA) || r == 'ー'
}

// IsJapanese reports whether r belongs to any Japanese script range.
func IsJapanese(r rune) bool {
	return IsHiragana(r) || IsKatakana(r) || IsKanji(r)
}

// HasJapanese reports whether s contains at least one Japanese-script rune.
func HasJapanese(s string) bool {
	for _, r := range s {
		if IsJapanese(r) {
			return true
		}
	}
	return false
}

// HasKanji reports whether s contains at least one kanji.
func HasKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// IsKanjiOnly reports whether s is non-empty and consists solely of kanji.
func IsKanjiOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsKanji(r) {
			return false
		}
	}
	return true
}

// IsHiraganaOnly reports whether s is non-empty and consists solely of hiragana.
func IsHiraganaOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) {
			return false
		}
	}
	return true
}

// IsKatakanaOnly reports whether s is non-empty and consists solely of katakana.
func IsKatakanaOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsKatakana(r) {
			return false
		}
	}
	return true
}

// IsKanaOnly reports whether s is non-empty and consists solely of kana.
func IsKanaOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) && !IsKatakana(r) {
			return false
		}
	}
	return true
}

// Normalize applies NFKC normalization (folding full-width forms and
// compatibility variants), trims surrounding whitespace and collapses any
// internal whitespace runs. Normalizing an already-normalized string is a
// no-op.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), " ")
}

type scriptClass int

const (
	classOther scriptClass = iota
	classHiragana
	classKatakana
	classKanji
)

func classOf(r rune) scriptClass {
	switch {
	case IsKanji(r):
		return classKanji
	case IsHiragana(r):
		return classHiragana
	case IsKatakana(r):
		return classKatakana
	default:
		return classOther
	}
}

// SplitScriptRuns splits s into maximal runs of a single Japanese script
// class (kanji, hiragana, katakana). Non-Japanese runes act as separators and
// are dropped. OCR tends to glue adjacent scripts into one word; the combiner
// works on these primitive runs.
func SplitScriptRuns(s string) []string {
	var runs []string
	var cur []rune
	curClass := classOther
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		if unicode.IsSpace(r) {
			flush()
			curClass = classOther
			continue
		}
		c := classOf(r)
		if c == classOther {
			flush()
			curClass = classOther
			continue
		}
		if c != curClass {
			flush()
			curClass = c
		}
		cur = append(cur, r)
	}
	flush()
	return runs
}
