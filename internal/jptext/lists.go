package jptext

// Curated exclusion sets. These are hand-maintained closed lists tuned against
// real-world sample photos; membership is exact-match on the normalized
// string. Do not regenerate them algorithmically.

// boundPrefixes are bound morphemes that cannot stand alone as vocabulary:
// honorific prefixes that OCR frequently splits off the word they attach to.
// Kana entries only: a single kanji (御, 不, 未, ...) is accepted as a
// vocabulary unit by Classify before these lists are consulted.
var boundPrefixes = map[string]bool{
	"お": true, "ご": true,
}

// boundSuffixes are nominal suffixes that only occur attached to a preceding
// noun. Kana entries only, same reason as boundPrefixes.
var boundSuffixes = map[string]bool{
	"たち": true, "さん": true, "ちゃん": true,
}

// inflectionEndings are verb/adjective inflection endings that OCR emits as
// standalone tokens when a conjugated word straddles a line or column break.
// A candidate exactly equal to one of these is never a vocabulary term.
var inflectionEndings = map[string]bool{
	"ます": true, "ました": true, "ません": true, "ませんでした": true,
	"ましょう": true, "です": true, "でした": true, "でしょう": true,
	"ない": true, "なかった": true, "なくて": true,
	"たい": true, "たく": true, "たかった": true,
	"たら": true, "なら": true, "れば": true, "ければ": true,
	"せる": true, "させる": true, "れる": true, "られる": true,
	"ている": true, "ていた": true, "ていません": true,
	"ちゃう": true, "てる": true, "てた": true,
	"ください": true, "なさい": true,
	"かった": true, "くない": true, "くて": true,
}

// functionWords are grammatical words and short hiragana strings that appear
// constantly in running text but are useless as vocabulary imports:
// demonstratives, copulas, light verbs, connectives, and a handful of short
// hiragana strings empirically known to be OCR noise.
var functionWords = map[string]bool{
	// demonstratives
	"これ": true, "それ": true, "あれ": true, "どれ": true,
	"ここ": true, "そこ": true, "あそこ": true, "どこ": true,
	"この": true, "その": true, "あの": true, "どの": true,
	"こちら": true, "そちら": true, "あちら": true, "どちら": true,
	// copulas and light verbs
	"だ": true, "である": true, "します": true, "する": true,
	"なる": true, "ある": true, "いる": true, "いた": true,
	"いう": true, "やる": true, "できる": true, "もの": true,
	"こと": true, "とき": true, "ところ": true,
	// connectives
	"しかし": true, "そして": true, "でも": true, "また": true,
	"から": true, "まで": true, "など": true, "ので": true,
	"のに": true, "けど": true, "けれど": true, "だから": true,
	"それで": true, "つまり": true,
	// bare particles and single kana seen as OCR noise
	"の": true, "は": true, "が": true, "を": true, "に": true,
	"で": true, "と": true, "も": true, "や": true, "へ": true,
	"て": true, "た": true, "な": true, "い": true, "か": true,
	"ん": true, "う": true, "し": true, "く": true, "よ": true,
	"ね": true, "ば": true,
	// short hiragana OCR artifacts
	"いい": true, "ああ": true, "そう": true, "こう": true,
	"どう": true, "もう": true, "まだ": true, "よう": true,
}

// particles participate in the structural noise rules (fragments of the form
// kanji+particle, kanji+particle+kanji). の is deliberately absent from the
// mid-string rule's view (see noiseMidParticleFragment) because it
// legitimately joins compound nouns.
var particles = map[rune]bool{
	'は': true, 'が': true, 'を': true, 'に': true, 'で': true,
	'と': true, 'も': true, 'や': true, 'へ': true, 'の': true,
	'ば': true,
}

// inflectionFragments are conjugated-form tails: a kanji stem immediately
// followed by one of these is a sliced conjugated verb or adjective, not a
// dictionary-form term (e.g. 行きます, 食べました, 帰った).
var inflectionFragments = []string{
	"きます", "ぎます", "します", "ちます", "にます", "びます",
	"みます", "ります", "います", "えます", "けます", "せます",
	"てます", "ねます", "べます", "めます", "れます",
	"ました", "ません", "った", "って", "んだ", "んで",
	"いた", "いて", "えた", "えて", "たい", "ない",
	"くて", "かった", "くない",
}
