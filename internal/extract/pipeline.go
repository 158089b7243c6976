package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/hybrid"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/imageprep"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/recognize"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/vocab"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// Mode selects which extraction engines run.
type Mode string

const (
	// ModeOCR runs only the OCR path; output is plain term strings.
	ModeOCR Mode = "ocr"
	// ModeLLM runs only the LLM vision path.
	ModeLLM Mode = "llm"
	// ModeHybrid runs both paths and merges them.
	ModeHybrid Mode = "hybrid"
)

// ErrSuperseded is returned when a newer job replaced this one. Like context
// cancellation it is not a failure and must not be logged as an error.
var ErrSuperseded = errors.New("extraction superseded by a newer job")

// ErrUnknownMode is returned for a mode outside ocr/llm/hybrid.
var ErrUnknownMode = errors.New("unknown extraction mode")

// ErrNoVisionExtractor is returned when llm or hybrid mode is requested but
// no vision extractor was configured.
var ErrNoVisionExtractor = errors.New("no vision extractor configured")

// IsCancellation reports whether err is a cancellation condition rather than
// a failure: user abort, deadline, or job supersession.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrSuperseded)
}

// ProgressFunc receives a fraction in [0,1], monotonically non-decreasing
// within one job. The LLM path reports only on completion.
type ProgressFunc func(fraction float64)

// RecognizerFactory creates the OCR engine for one extraction run. The
// pipeline reuses the engine across all variants and releases it when the run
// finishes or is canceled.
type RecognizerFactory func(ctx context.Context) (recognize.Recognizer, error)

// LLMExtractor is the pipeline's view of the vision extraction path.
type LLMExtractor interface {
	Extract(ctx context.Context, image []byte, locale string) ([]models.ExtractedWord, error)
}

// Request is one extraction job.
type Request struct {
	// Images are raw encoded images (JPEG/PNG/GIF), processed sequentially.
	Images [][]byte
	// Mode selects the engines; defaults to ModeOCR.
	Mode Mode
	// Locale selects the meaning language for the LLM path ("ko" or "en").
	Locale string
	// Progress, when set, receives job progress.
	Progress ProgressFunc
	// Resolver looks up already-owned terms; nil disables the check.
	Resolver vocab.Resolver
}

// Result is the outcome of one extraction job.
type Result struct {
	// Terms is the plain term list (OCR mode contract). Populated in every
	// mode for convenience.
	Terms []string
	// Words carries full records; for OCR mode only Term and Known are set.
	Words []models.ExtractedWord
	// Stats are the OCR-path ranking diagnostics.
	Stats RankStats
}

// Pipeline coordinates one extraction job at a time. Starting a new job
// atomically invalidates the previous one: every continuation checks the job
// generation before touching shared state, which is the cancellation
// mechanism. The generation counter, the active cancel handle and partial
// results are owned here and never touched by the recognition adapter or the
// network client.
type Pipeline struct {
	newRecognizer RecognizerFactory
	llm           LLMExtractor
	generator     *imageprep.Generator
	merger        *hybrid.Merger
	log           zerolog.Logger

	gen    atomic.Int64
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPipeline creates a pipeline. llm may be nil when only OCR mode is used.
func NewPipeline(newRecognizer RecognizerFactory, llm LLMExtractor) *Pipeline {
	return &Pipeline{
		newRecognizer: newRecognizer,
		llm:           llm,
		generator:     imageprep.NewGenerator(),
		merger:        hybrid.NewMerger(),
		log:           logger.WithComponent("pipeline"),
	}
}

// Extract runs one job. Images are processed sequentially because the
// recognition engine is a single stateful resource. Cancellation (ctx or a
// newer job) returns a cancellation error, never partial results.
func (p *Pipeline) Extract(ctx context.Context, req Request) (*Result, error) {
	if req.Mode == "" {
		req.Mode = ModeOCR
	}
	switch req.Mode {
	case ModeOCR, ModeLLM, ModeHybrid:
	default:
		return nil, ErrUnknownMode
	}
	if req.Mode != ModeOCR && p.llm == nil {
		return nil, ErrNoVisionExtractor
	}
	if len(req.Images) == 0 {
		return &Result{}, nil
	}

	id, ctx, cancel := p.begin(ctx)
	defer p.finish(id, cancel)
	progress := &progressReporter{p: p, id: id, fn: req.Progress}

	var ocrWords []models.ExtractedWord
	var stats RankStats
	if req.Mode != ModeLLM {
		tokens, err := p.runOCRPath(ctx, id, req.Images, progress)
		if err != nil {
			return nil, err
		}
		var ranked []models.ScoredToken
		ranked, stats = Rank(tokens)
		p.log.Debug().
			Int("collected", stats.Collected).
			Int("rejected_length", stats.RejectedByLength).
			Int("rejected_pattern", stats.RejectedByPattern).
			Int("suppressed_fragments", stats.SuppressedFragments).
			Int("rejected_cap", stats.RejectedByCap).
			Msg("OCR candidates ranked")
		ocrWords = make([]models.ExtractedWord, 0, len(ranked))
		for _, t := range ranked {
			ocrWords = append(ocrWords, models.ExtractedWord{Term: t.Text, Source: models.SourceOCR})
		}
	}

	var llmWords []models.ExtractedWord
	if req.Mode != ModeOCR {
		words, err := p.runLLMPath(ctx, id, req, progress)
		if err != nil {
			if req.Mode == ModeLLM || IsCancellation(err) {
				return nil, err
			}
			// Hybrid degrades to OCR-only results on an LLM failure.
			p.log.Warn().Err(err).Msg("LLM path failed, degrading to OCR-only results")
		}
		llmWords = words
	}

	known := p.resolveKnown(ctx, req.Resolver, ocrWords, llmWords)

	var words []models.ExtractedWord
	switch req.Mode {
	case ModeOCR:
		words = ocrWords
		vocab.MarkKnown(words, known)
	case ModeLLM:
		words = capWords(llmWords)
		vocab.MarkKnown(words, known)
	case ModeHybrid:
		words = p.merger.Merge(ocrWords, llmWords, known)
	}

	progress.report(1.0)

	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = w.Term
	}
	return &Result{Terms: terms, Words: words, Stats: stats}, nil
}

// runOCRPath recognizes every variant of every image and collects combined
// tokens. Per-variant failures are non-fatal; a run where nothing recognizes
// returns zero tokens, which ranks into an empty output list.
func (p *Pipeline) runOCRPath(ctx context.Context, id int64, images [][]byte, progress *progressReporter) ([]models.ScoredToken, error) {
	rec, err := p.newRecognizer(ctx)
	if err != nil {
		return nil, err
	}
	// Release the engine on every exit path, cancellation included.
	defer func() {
		if cerr := rec.Close(); cerr != nil {
			p.log.Warn().Err(cerr).Msg("failed to release recognition engine")
		}
	}()

	total := len(images)
	var tokens []models.ScoredToken
	for i, raw := range images {
		if err := p.stillCurrent(ctx, id); err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			p.log.Warn().Err(err).Int("image", i).Msg("undecodable image, skipping")
			progress.report(float64(i+1) / float64(total))
			continue
		}
		variants := p.generator.Generate(img)
		for j, variant := range variants {
			if err := p.stillCurrent(ctx, id); err != nil {
				return nil, err
			}
			res, rerr := rec.Recognize(ctx, variant)
			if rerr != nil {
				if err := p.stillCurrent(ctx, id); err != nil {
					return nil, err
				}
				if errors.Is(rerr, recognize.ErrNoText) {
					p.log.Debug().Str("variant", variant.ID).Int("image", i).
						Msg("variant produced no text")
				} else {
					p.log.Warn().Err(rerr).Str("variant", variant.ID).Int("image", i).
						Msg("variant recognition failed, continuing")
				}
			} else {
				tokens = append(tokens, CombineResult(res, variant.Weight)...)
			}
			progress.report((float64(i) + float64(j+1)/float64(len(variants))) / float64(total))
		}
	}
	return tokens, nil
}

// runLLMPath extracts words from every image through the vision extractor,
// deduplicating across images on term.
func (p *Pipeline) runLLMPath(ctx context.Context, id int64, req Request, progress *progressReporter) ([]models.ExtractedWord, error) {
	seen := make(map[string]bool)
	var words []models.ExtractedWord
	for i, raw := range req.Images {
		if err := p.stillCurrent(ctx, id); err != nil {
			return words, err
		}
		extracted, err := p.llm.Extract(ctx, raw, req.Locale)
		if err != nil {
			return words, err
		}
		for _, w := range extracted {
			if !seen[w.Term] {
				seen[w.Term] = true
				words = append(words, w)
			}
		}
		if req.Mode == ModeLLM {
			progress.report(float64(i+1) / float64(len(req.Images)))
		}
	}
	return words, nil
}

// resolveKnown performs the single bulk existing-term lookup. Resolver
// failures downgrade to an empty set; losing the Known flags is better than
// failing an otherwise successful extraction.
func (p *Pipeline) resolveKnown(ctx context.Context, resolver vocab.Resolver, lists ...[]models.ExtractedWord) map[string]bool {
	if resolver == nil {
		return map[string]bool{}
	}
	seen := make(map[string]bool)
	var terms []string
	for _, list := range lists {
		for _, w := range list {
			if !seen[w.Term] {
				seen[w.Term] = true
				terms = append(terms, w.Term)
			}
		}
	}
	if len(terms) == 0 {
		return map[string]bool{}
	}
	known, err := resolver.Resolve(ctx, terms)
	if err != nil {
		p.log.Warn().Err(err).Msg("existing-term lookup failed, treating all terms as new")
		return map[string]bool{}
	}
	return known
}

func capWords(words []models.ExtractedWord) []models.ExtractedWord {
	if len(words) > models.MaxOutputTerms {
		return words[:models.MaxOutputTerms]
	}
	return words
}

// begin starts a new job: the previous job's context is canceled and the
// generation counter advances, atomically invalidating its id.
func (p *Pipeline) begin(ctx context.Context) (int64, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	id := p.gen.Add(1)
	p.mu.Unlock()
	return id, ctx, cancel
}

// finish releases the job's cancel handle if it is still the current job.
func (p *Pipeline) finish(id int64, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	if p.gen.Load() == id {
		p.cancel = nil
	}
	p.mu.Unlock()
}

// stillCurrent is the "am I still the current job" check run before every
// continuation.
func (p *Pipeline) stillCurrent(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.gen.Load() != id {
		return ErrSuperseded
	}
	return nil
}

// progressReporter clamps progress to a monotone [0,1] fraction and goes
// silent once its job is no longer current.
type progressReporter struct {
	p    *Pipeline
	id   int64
	fn   ProgressFunc
	last float64
}

func (r *progressReporter) report(f float64) {
	if r.fn == nil || r.p.gen.Load() != r.id {
		return
	}
	if f > 1 {
		f = 1
	}
	if f <= r.last {
		return
	}
	r.last = f
	r.fn(f)
}
