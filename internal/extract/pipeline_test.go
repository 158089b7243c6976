package extract_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/extract"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/recognize"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// fakeRecognizer returns the same fixed result for every variant.
type fakeRecognizer struct {
	mu        sync.Mutex
	result    *recognize.Result
	err       error
	onRecog   func()
	calls     int
	closed    bool
}

func (f *fakeRecognizer) Recognize(ctx context.Context, variant models.ImageVariant) (*recognize.Result, error) {
	f.mu.Lock()
	f.calls++
	hook := f.onRecog
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRecognizer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeLLM struct {
	words []models.ExtractedWord
	err   error
}

func (f *fakeLLM) Extract(ctx context.Context, image []byte, locale string) ([]models.ExtractedWord, error) {
	return f.words, f.err
}

func singleLineResult(wordTexts ...string) *recognize.Result {
	var words []recognize.Word
	for _, text := range wordTexts {
		words = append(words, recognize.Word{Text: text, Confidence: 90})
	}
	return &recognize.Result{Blocks: []recognize.Block{{
		Paragraphs: []recognize.Paragraph{{Lines: []recognize.Line{{Words: words}}}},
	}}}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func newTestPipeline(rec *fakeRecognizer, llm extract.LLMExtractor) *extract.Pipeline {
	return extract.NewPipeline(func(ctx context.Context) (recognize.Recognizer, error) {
		return rec, nil
	}, llm)
}

func TestExtractOCRMode(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{result: singleLineResult("食", "べる", "学校")}
	p := newTestPipeline(rec, nil)

	res, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	found := make(map[string]bool)
	for _, term := range res.Terms {
		found[term] = true
	}
	if !found["食べる"] || !found["学校"] {
		t.Errorf("expected 食べる and 学校 in output, got %v", res.Terms)
	}
	for _, w := range res.Words {
		if w.Source != models.SourceOCR {
			t.Errorf("OCR-mode word %q has source %q", w.Term, w.Source)
		}
	}
	if !rec.closed {
		t.Error("recognition engine was not released")
	}
	if rec.calls == 0 {
		t.Error("recognizer never called")
	}
}

func TestExtractProgressIsMonotone(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{result: singleLineResult("学校")}
	p := newTestPipeline(rec, nil)

	var fractions []float64
	_, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t), testPNG(t)},
		Progress: func(f float64) {
			fractions = append(fractions, f)
		},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(fractions) == 0 {
		t.Fatal("no progress reported")
	}
	prev := 0.0
	for _, f := range fractions {
		if f <= prev || f > 1 {
			t.Fatalf("progress not strictly increasing within (0,1]: %v", fractions)
		}
		prev = f
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final progress = %v, want 1.0", fractions[len(fractions)-1])
	}
}

func TestExtractPerVariantFailuresAreNonFatal(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{err: recognize.ErrNoText}
	p := newTestPipeline(rec, nil)

	res, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Terms) != 0 {
		t.Errorf("expected empty output, got %v", res.Terms)
	}
	if !rec.closed {
		t.Error("recognition engine was not released")
	}
}

func TestExtractHybridDegradesOnLLMFailure(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{result: singleLineResult("学校")}
	p := newTestPipeline(rec, &fakeLLM{err: errors.New("provider down")})

	res, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
		Mode:   extract.ModeHybrid,
	})
	if err != nil {
		t.Fatalf("hybrid mode should survive an LLM failure, got %v", err)
	}
	found := false
	for _, term := range res.Terms {
		if term == "学校" {
			found = true
		}
	}
	if !found {
		t.Errorf("OCR results lost during degradation: %v", res.Terms)
	}
}

func TestExtractLLMModeSurfacesFailure(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeRecognizer{}, &fakeLLM{err: errors.New("provider down")})

	_, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
		Mode:   extract.ModeLLM,
	})
	if err == nil {
		t.Fatal("llm mode must surface the provider failure")
	}
}

func TestExtractHybridMergesSources(t *testing.T) {
	t.Parallel()

	rec := &fakeRecognizer{result: singleLineResult("学校")}
	llm := &fakeLLM{words: []models.ExtractedWord{
		{Term: "学校", Reading: "がっこう", Meaning: "school", JLPTLevel: 5, Source: models.SourceLLM},
		{Term: "水", Meaning: "water", Source: models.SourceLLM},
	}}
	p := newTestPipeline(rec, llm)

	res, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
		Mode:   extract.ModeHybrid,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	byTerm := make(map[string]models.ExtractedWord)
	for _, w := range res.Words {
		byTerm[w.Term] = w
	}
	school, ok := byTerm["学校"]
	if !ok {
		t.Fatalf("学校 missing from %v", res.Terms)
	}
	if school.Source != models.SourceBoth {
		t.Errorf("学校 source = %q, want both", school.Source)
	}
	if school.Reading != "がっこう" || school.Meaning != "school" {
		t.Errorf("学校 fields not merged: %+v", school)
	}
	if byTerm["水"].Source != models.SourceLLM {
		t.Errorf("水 source = %q, want llm", byTerm["水"].Source)
	}
	// Agreement outranks single-engine findings.
	if res.Words[0].Term != "学校" {
		t.Errorf("both-engines term should rank first, got %v", res.Terms)
	}
}

func TestExtractUnknownMode(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeRecognizer{}, nil)
	_, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
		Mode:   extract.Mode("bogus"),
	})
	if !errors.Is(err, extract.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestExtractLLMModeWithoutExtractor(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeRecognizer{}, nil)
	_, err := p.Extract(context.Background(), extract.Request{
		Images: [][]byte{testPNG(t)},
		Mode:   extract.ModeLLM,
	})
	if !errors.Is(err, extract.ErrNoVisionExtractor) {
		t.Errorf("err = %v, want ErrNoVisionExtractor", err)
	}
}

func TestExtractNoImages(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeRecognizer{}, nil)
	res, err := p.Extract(context.Background(), extract.Request{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Terms) != 0 {
		t.Errorf("expected empty result, got %v", res.Terms)
	}
}

func TestExtractCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(&fakeRecognizer{result: singleLineResult("学校")}, nil)
	_, err := p.Extract(ctx, extract.Request{Images: [][]byte{testPNG(t)}})
	if !extract.IsCancellation(err) {
		t.Errorf("err = %v, want a cancellation error", err)
	}
}

func TestExtractNewJobSupersedesRunningJob(t *testing.T) {
	t.Parallel()

	img := testPNG(t)
	rec := &fakeRecognizer{result: singleLineResult("学校")}
	var p *extract.Pipeline
	var triggered atomic.Bool
	var secondErr error
	rec.onRecog = func() {
		// Start a competing job mid-recognition; the first job must notice
		// and abort with a cancellation error.
		if triggered.CompareAndSwap(false, true) {
			_, secondErr = p.Extract(context.Background(), extract.Request{Images: [][]byte{img}})
		}
	}
	p = newTestPipeline(rec, nil)

	_, err := p.Extract(context.Background(), extract.Request{Images: [][]byte{img}})
	if !extract.IsCancellation(err) {
		t.Fatalf("first job err = %v, want a cancellation error", err)
	}
	if secondErr != nil {
		t.Fatalf("second job err = %v, want success", secondErr)
	}
}
