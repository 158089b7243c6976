package vocab

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/rs/zerolog"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/jptext"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Annotator fills hiragana readings for OCR-path terms using a local
// morphological dictionary, so callers get readings without a network
// dictionary service. Meanings still come from an external dictionary
// collaborator.
type Annotator struct {
	tok *tokenizer.Tokenizer
	log zerolog.Logger
}

// NewAnnotator builds an annotator over the bundled IPA dictionary.
func NewAnnotator() (*Annotator, error) {
	tok, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Annotator{
		tok: tok,
		log: logger.WithComponent("annotate"),
	}, nil
}

// Annotate rewrites inflected terms to their dictionary form and fills the
// Reading field of every word that lacks one. Terms the dictionary cannot
// read are left untouched.
func (a *Annotator) Annotate(words []models.ExtractedWord) {
	for i := range words {
		if lemma := a.dictionaryForm(words[i].Term); lemma != "" && lemma != words[i].Term {
			a.log.Debug().Str("term", words[i].Term).Str("lemma", lemma).
				Msg("term rewritten to dictionary form")
			words[i].Term = lemma
			words[i].Reading = ""
		}
		if words[i].Reading != "" {
			continue
		}
		if reading := a.reading(words[i].Term); reading != "" {
			words[i].Reading = reading
		}
	}
}

// dictionaryForm returns the base form of an inflected verb or adjective:
// one content morpheme whose trailing morphemes are all auxiliaries or
// particles (食べた, 飲んで). Returns "" when term is not such a phrase.
func (a *Annotator) dictionaryForm(term string) string {
	tokens := a.tok.Tokenize(term)
	if len(tokens) == 0 {
		return ""
	}
	head := tokens[0]
	pos := head.POS()
	if len(pos) == 0 || (pos[0] != "動詞" && pos[0] != "形容詞") {
		return ""
	}
	base, ok := head.BaseForm()
	if !ok || base == "" || base == "*" {
		return ""
	}
	for _, tk := range tokens[1:] {
		p := tk.POS()
		if len(p) == 0 || (p[0] != "助動詞" && p[0] != "助詞") {
			return ""
		}
	}
	if !jptext.HasJapanese(base) || jptext.Classify(base) != jptext.Accepted {
		return ""
	}
	return base
}

// reading concatenates the per-morpheme readings of term, converted to
// hiragana. Returns "" when any morpheme is unknown to the dictionary —
// a partial reading is worse than none.
func (a *Annotator) reading(term string) string {
	var sb strings.Builder
	for _, tk := range a.tok.Tokenize(term) {
		r, ok := tk.Reading()
		if !ok || r == "" {
			return ""
		}
		sb.WriteString(katakanaToHiragana(r))
	}
	reading := sb.String()
	// Dictionary readings are katakana; after conversion only hiragana and
	// the long-vowel mark may remain. Anything else means the term contained
	// symbols the tokenizer passed through.
	for _, r := range reading {
		if !jptext.IsHiragana(r) && r != 'ー' {
			return ""
		}
	}
	return reading
}

// katakanaToHiragana shifts katakana runes into the hiragana block.
func katakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
