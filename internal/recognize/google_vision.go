package recognize

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

// languageHints biases the engine toward Japanese script. Menu and sign
// photos routinely mix scripts, so the hint list stays minimal.
var languageHints = []string{"ja"}

// VisionRecognizer implements Recognizer using the Google Cloud Vision API's
// document text detection.
type VisionRecognizer struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
	closed bool
}

// NewVisionRecognizer creates a recognizer with credentials from the
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env, falling back to application default
// credentials.
func NewVisionRecognizer(ctx context.Context) (*VisionRecognizer, error) {
	const op = "NewVisionRecognizer"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, wrapError(op, "", err)
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, wrapError(op, "", err)
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, wrapError(op, "", ErrMissingCredentials)
		}
	}

	return &VisionRecognizer{
		client: client,
		log:    logger.WithComponent("recognize"),
	}, nil
}

// NewVisionRecognizerWithClient creates a recognizer with an explicit client
// (for testing).
func NewVisionRecognizerWithClient(client *vision.ImageAnnotatorClient) *VisionRecognizer {
	return &VisionRecognizer{
		client: client,
		log:    logger.WithComponent("recognize"),
	}
}

// Recognize runs document text detection over one variant.
func (v *VisionRecognizer) Recognize(ctx context.Context, variant models.ImageVariant) (*Result, error) {
	const op = "Recognize"

	if v.closed {
		return nil, wrapError(op, variant.ID, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, variant.Image); err != nil {
		return nil, wrapError(op, variant.ID, ErrEncodeImage)
	}

	resp, err := v.client.BatchAnnotateImages(ctx, annotateRequest(buf.Bytes()))
	if err != nil {
		if ctx.Err() != nil {
			// Cancellation is not a recognition failure.
			return nil, ctx.Err()
		}
		return nil, wrapError(op, variant.ID, ErrRecognitionFailed)
	}
	if len(resp.Responses) == 0 {
		return nil, wrapError(op, variant.ID, ErrRecognitionFailed)
	}
	imgResp := resp.Responses[0]
	if imgResp.Error != nil {
		v.log.Warn().
			Str("variant", variant.ID).
			Str("api_error", imgResp.Error.Message).
			Msg("Vision API rejected the image")
		return nil, wrapError(op, variant.ID, ErrRecognitionFailed)
	}

	annotation := imgResp.FullTextAnnotation
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return nil, wrapError(op, variant.ID, ErrNoText)
	}

	result := convertAnnotation(annotation)

	v.log.Debug().
		Str("variant", variant.ID).
		Int("blocks", len(result.Blocks)).
		Int("lines", len(result.Lines())).
		Msg("variant recognized")

	return result, nil
}

// Close releases the underlying Vision client.
func (v *VisionRecognizer) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// annotateRequest builds a single-image document text detection request with
// the Japanese language hint.
func annotateRequest(content []byte) *visionpb.BatchAnnotateImagesRequest {
	return &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{LanguageHints: languageHints},
			},
		},
	}
}

// convertAnnotation maps the Vision response onto the adapter's
// block→paragraph→line→word structure. The API has no line level; lines are
// synthesized from per-symbol break metadata.
func convertAnnotation(annotation *visionpb.TextAnnotation) *Result {
	result := &Result{}
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			var outBlock Block
			for _, para := range block.Paragraphs {
				var outPara Paragraph
				var line Line
				for _, word := range para.Words {
					text, eol := assembleWord(word)
					if text == "" {
						continue
					}
					line.Words = append(line.Words, Word{
						Text:       text,
						Confidence: float64(word.Confidence) * 100,
					})
					if eol {
						outPara.Lines = append(outPara.Lines, line)
						line = Line{}
					}
				}
				if len(line.Words) > 0 {
					outPara.Lines = append(outPara.Lines, line)
				}
				if len(outPara.Lines) > 0 {
					outBlock.Paragraphs = append(outBlock.Paragraphs, outPara)
				}
			}
			if len(outBlock.Paragraphs) > 0 {
				result.Blocks = append(result.Blocks, outBlock)
			}
		}
	}
	return result
}

// assembleWord joins a word's symbols and reports whether the word ends its
// visual line.
func assembleWord(word *visionpb.Word) (string, bool) {
	var sb strings.Builder
	eol := false
	for _, sym := range word.Symbols {
		sb.WriteString(sym.Text)
		if sym.Property != nil && sym.Property.DetectedBreak != nil {
			switch sym.Property.DetectedBreak.Type {
			case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
				visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
				eol = true
			}
		}
	}
	return sb.String(), eol
}
