package jptext

// Reason is the classifier verdict for a candidate term. The zero value
// Accepted means the candidate passed every check.
type Reason int

const (
	// Accepted means the candidate is a plausible vocabulary term.
	Accepted Reason = iota
	// ReasonEmpty rejects candidates that normalize to the empty string.
	ReasonEmpty
	// ReasonNoJapanese rejects candidates without any Japanese-script rune.
	ReasonNoJapanese
	// ReasonAffixOnly rejects bare bound prefixes/suffixes.
	ReasonAffixOnly
	// ReasonInflectionOnly rejects bare inflection endings.
	ReasonInflectionOnly
	// ReasonFunctionWord rejects grammatical words and known OCR-noise kana.
	ReasonFunctionWord
	// ReasonNoisePattern rejects candidates matching a structural noise rule.
	ReasonNoisePattern
)

// String returns the wire/log name of the reason.
func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case ReasonEmpty:
		return "empty"
	case ReasonNoJapanese:
		return "no_japanese"
	case ReasonAffixOnly:
		return "affix_only"
	case ReasonInflectionOnly:
		return "inflection_only"
	case ReasonFunctionWord:
		return "function_word"
	case ReasonNoisePattern:
		return "noise_pattern"
	default:
		return "unknown"
	}
}

// Classify normalizes raw and decides whether it is a plausible vocabulary
// term. It is pure and idempotent; the check order is fixed because it
// determines the reported reason. A lone kanji is always accepted — a single
// kanji is a valid vocabulary unit and short-circuits every rejection rule.
func Classify(raw string) Reason {
	s := Normalize(raw)
	if s == "" {
		return ReasonEmpty
	}
	if !HasJapanese(s) {
		return ReasonNoJapanese
	}
	runes := []rune(s)
	if len(runes) == 1 && IsKanji(runes[0]) {
		return Accepted
	}
	if boundPrefixes[s] || boundSuffixes[s] {
		return ReasonAffixOnly
	}
	if inflectionEndings[s] {
		return ReasonInflectionOnly
	}
	if functionWords[s] {
		return ReasonFunctionWord
	}
	for _, rule := range noiseRules {
		if rule.match(runes) {
			return ReasonNoisePattern
		}
	}
	return Accepted
}

// NoiseRuleName returns the name of the first structural noise rule matching
// s, or "" if none does. Diagnostic only; Classify is the authoritative check.
func NoiseRuleName(s string) string {
	runes := []rune(Normalize(s))
	for _, rule := range noiseRules {
		if rule.match(runes) {
			return rule.name
		}
	}
	return ""
}

type noiseRule struct {
	name  string
	match func(runes []rune) bool
}

// noiseRules is the ordered battery of structural noise heuristics; the first
// match wins. All thresholds are tuned constants.
var noiseRules = []noiseRule{
	{"elongation_run", noiseElongationRun},
	{"repeated_char", noiseRepeatedChar},
	{"affix_marks", noiseAffixMarks},
	{"short_katakana", noiseShortKatakana},
	{"vertical_artifact", noiseVerticalArtifact},
	{"low_diversity", noiseLowDiversity},
	{"dominant_repeat", noiseDominantRepeat},
	{"kanji_particle", noiseKanjiParticle},
	{"kanji_hira_mix", noiseKanjiHiraMix},
	{"inflection_tail", noiseInflectionTail},
	{"masu_stem", noiseMasuStem},
	{"particle_end", noiseParticleEnd},
	{"mid_particle_fragment", noiseMidParticleFragment},
}

// noiseElongationRun: the string is nothing but elongation marks.
func noiseElongationRun(runes []rune) bool {
	for _, r := range runes {
		if r != 'ー' && r != '〜' && r != '~' {
			return false
		}
	}
	return true
}

// noiseRepeatedChar: one character repeated two or more times, nothing else.
func noiseRepeatedChar(runes []rune) bool {
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

func isAffixMark(r rune) bool {
	switch r {
	case '〜', '~', '・', '-', '−', '―', 'ー':
		return true
	}
	return false
}

// noiseAffixMarks: leading/trailing clusters of tildes, middle dots, hyphens
// and long-vowel marks. Two or more edge marks always reject; a single edge
// mark rejects only when the stripped remainder is very short (≤2 runes), so
// legitimate loanwords like コーヒー survive the trailing ー.
func noiseAffixMarks(runes []rune) bool {
	lead := 0
	for lead < len(runes) && isAffixMark(runes[lead]) {
		lead++
	}
	trail := 0
	for trail < len(runes)-lead && isAffixMark(runes[len(runes)-1-trail]) {
		trail++
	}
	marks := lead + trail
	if marks == 0 {
		return false
	}
	if marks >= 2 {
		return true
	}
	stripped := len(runes) - marks
	return stripped <= 2
}

// noiseShortKatakana: a very short katakana string ending in a long-vowel
// mark (ジュー), or exactly two identical katakana characters.
func noiseShortKatakana(runes []rune) bool {
	s := string(runes)
	if IsKatakanaOnly(s) && len(runes) <= 3 && runes[len(runes)-1] == 'ー' {
		return true
	}
	return len(runes) == 2 && runes[0] == runes[1] && IsKatakana(runes[0])
}

// noiseVerticalArtifact: two adjacent リ glyphs. Vertical long-vowel marks in
// top-to-bottom text are misread as リ by the engine, so a リリ run marks the
// candidate as a column-layout artifact.
func noiseVerticalArtifact(runes []rune) bool {
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == 'リ' && runes[i+1] == 'リ' {
			return true
		}
	}
	return false
}

// noiseLowDiversity: length ≥4 with a unique-character ratio below 0.4.
func noiseLowDiversity(runes []rune) bool {
	if len(runes) < 4 {
		return false
	}
	uniq := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		uniq[r] = struct{}{}
	}
	return float64(len(uniq))/float64(len(runes)) < 0.4
}

// noiseDominantRepeat: one character repeated 3+ times, with or without one
// differing prefix character.
func noiseDominantRepeat(runes []rune) bool {
	check := func(tail []rune) bool {
		if len(tail) < 3 {
			return false
		}
		for _, r := range tail[1:] {
			if r != tail[0] {
				return false
			}
		}
		return true
	}
	return check(runes) || (len(runes) >= 4 && check(runes[1:]))
}

// noiseKanjiParticle: one or two kanji immediately followed by a single bare
// particle (学は, 鉄道が), total length ≤4.
func noiseKanjiParticle(runes []rune) bool {
	n := len(runes)
	if n < 2 || n > 4 {
		return false
	}
	if !particles[runes[n-1]] {
		return false
	}
	kanji := runes[:n-1]
	if len(kanji) > 2 {
		return false
	}
	for _, r := range kanji {
		if !IsKanji(r) {
			return false
		}
	}
	return true
}

// noiseKanjiHiraMix: kanji, one or two hiragana, then kanji or katakana,
// within total length ≤4 — the engine joining the tails of two adjacent
// unrelated lines. A middle の is exempt: it legitimately joins compound
// nouns (combiner output like 山の手).
func noiseKanjiHiraMix(runes []rune) bool {
	n := len(runes)
	if n < 3 || n > 4 {
		return false
	}
	if !IsKanji(runes[0]) {
		return false
	}
	last := runes[n-1]
	if !IsKanji(last) && !IsKatakana(last) {
		return false
	}
	mid := runes[1 : n-1]
	for _, r := range mid {
		if !IsHiragana(r) {
			return false
		}
	}
	if len(mid) == 1 && mid[0] == 'の' {
		return false
	}
	return true
}

// noiseInflectionTail: a kanji stem immediately followed by a conjugated-form
// tail (行きます, 帰った), total length ≥3.
func noiseInflectionTail(runes []rune) bool {
	if len(runes) < 3 || !IsKanji(runes[0]) {
		return false
	}
	rest := string(runes[1:])
	for _, frag := range inflectionFragments {
		if rest == frag {
			return true
		}
	}
	return false
}

// noiseMasuStem: exactly two kanji followed by the stem-forming し of a suru
// verb (勉強し), length exactly 3.
func noiseMasuStem(runes []rune) bool {
	return len(runes) == 3 &&
		IsKanji(runes[0]) && IsKanji(runes[1]) && runes[2] == 'し'
}

// noiseParticleEnd: a kanji or katakana character immediately followed by a
// grammatical particle at the very end of the string, length ≥3.
func noiseParticleEnd(runes []rune) bool {
	n := len(runes)
	if n < 3 {
		return false
	}
	if !particles[runes[n-1]] {
		return false
	}
	prev := runes[n-2]
	return IsKanji(prev) || IsKatakana(prev)
}

// noiseMidParticleFragment: a kanji followed by a mid-string particle with
// more kanji after it (本を読, 駅に着) — a sentence fragment, not a term.
// の is excluded because it joins compound nouns.
func noiseMidParticleFragment(runes []rune) bool {
	n := len(runes)
	if n < 4 {
		return false
	}
	for i := 1; i < n-1; i++ {
		if !particles[runes[i]] || runes[i] == 'の' {
			continue
		}
		if !IsKanji(runes[i-1]) {
			continue
		}
		for j := i + 1; j < n; j++ {
			if IsKanji(runes[j]) {
				return true
			}
		}
	}
	return false
}
