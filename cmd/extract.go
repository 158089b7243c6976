package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/config"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/extract"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/recognize"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/vision"
	"github.com/JunjaK/nihongo-vocabook-sub001/internal/vocab"
	"github.com/JunjaK/nihongo-vocabook-sub001/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image-file...]",
	Short: "Extract Japanese vocabulary candidates from one or more images",
	Long: `Process image files and extract dictionary-form Japanese vocabulary
candidates from the text visible in them.

Three modes are available:
  ocr     Google Cloud Vision OCR over preprocessed image variants (default)
  llm     a single LLM vision model call per image
  hybrid  both paths, merged with cross-confirmation boosting

Required environment variables for the ocr and hybrid modes:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

Required for the llm and hybrid modes (depending on --provider):
  OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY`,
	Example: `  # Extract vocabulary from a photo to stdout
  vocab extract photo.jpg

  # Hybrid mode with Korean meanings, JSON output
  vocab extract photo.jpg --mode hybrid --locale ko --json -o words.json

  # Several pages at once, marking words already in my-words.txt
  vocab extract p1.jpg p2.jpg --known-words my-words.txt

  # LLM-only through Anthropic
  vocab extract photo.jpg --mode llm --provider anthropic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

// ExtractOutput represents the JSON output structure when --json flag is used
type ExtractOutput struct {
	Words              []models.ExtractedWord `json:"words"`
	Mode               string                 `json:"mode"`
	ImageCount         int                    `json:"image_count"`
	ProcessedAt        time.Time              `json:"processed_at"`
	ProcessingDuration string                 `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("mode", "", "Extraction mode: ocr, llm or hybrid (default from EXTRACT_MODE)")
	extractCmd.Flags().String("locale", "", "Meaning language for the LLM path: ko or en (default from MEANING_LOCALE)")
	extractCmd.Flags().String("provider", "", "LLM vision provider: openai, anthropic or gemini (default from VISION_PROVIDER)")
	extractCmd.Flags().String("model", "", "Override the provider's default model")
	extractCmd.Flags().String("known-words", "", "Path to a newline-separated list of already-known words")
	extractCmd.Flags().Bool("annotate", false, "Fill missing hiragana readings from the bundled dictionary")
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	locale, _ := cmd.Flags().GetString("locale")
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	knownWordsPath, _ := cmd.Flags().GetString("known-words")
	annotate, _ := cmd.Flags().GetBool("annotate")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if mode == "" {
		mode = cfg.Mode
	}
	if locale == "" {
		locale = cfg.Locale
	}
	if provider == "" {
		provider = cfg.VisionProvider
	}
	if model == "" {
		model = cfg.VisionModel
	}

	log.Info().
		Strs("files", args).
		Str("mode", mode).
		Str("locale", locale).
		Int("timeout", timeoutSecs).
		Msg("Starting vocabulary extraction")

	images, err := loadImages(args, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	pipeline, err := buildPipeline(extract.Mode(mode), provider, model, cfg, log)
	if err != nil {
		return err
	}

	resolver, err := buildResolver(knownWordsPath)
	if err != nil {
		log.Error().Err(err).Str("file", knownWordsPath).Msg("Failed to load known-words list")
		return fmt.Errorf("failed to load known-words list: %w", err)
	}

	startTime := time.Now()
	result, err := pipeline.Extract(ctx, extract.Request{
		Images:   images,
		Mode:     extract.Mode(mode),
		Locale:   locale,
		Resolver: resolver,
		Progress: func(fraction float64) {
			log.Debug().Float64("progress", fraction).Msg("extraction progress")
		},
	})
	if err != nil {
		return handleExtractError(err, log)
	}

	if annotate {
		annotator, aerr := vocab.NewAnnotator()
		if aerr != nil {
			log.Warn().Err(aerr).Msg("Failed to initialize reading annotator, skipping")
		} else {
			annotator.Annotate(result.Words)
		}
	}

	processingDuration := time.Since(startTime)
	log.Info().
		Int("words", len(result.Words)).
		Dur("duration", processingDuration).
		Msg("Vocabulary extraction completed successfully")

	return outputExtractResults(result, mode, len(images), outputPath, jsonOutput, processingDuration, log)
}

// loadImages reads and validates every image argument up front so a typo in
// the last path fails before any API call is made.
func loadImages(paths []string, log zerolog.Logger) ([][]byte, error) {
	images := make([][]byte, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Error().Str("file", path).Msg("Image file not found")
				return nil, fmt.Errorf("image file not found: %s", path)
			}
			return nil, fmt.Errorf("error accessing image file: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("path is not a regular file: %s", path)
		}
		if info.Size() == 0 {
			return nil, fmt.Errorf("image file is empty: %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image file %s: %w", path, err)
		}
		images = append(images, data)
	}
	return images, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling extraction")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// buildPipeline wires the OCR engine factory and, when the mode needs it, the
// LLM vision extractor.
func buildPipeline(mode extract.Mode, provider, model string, cfg *config.Config, log zerolog.Logger) (*extract.Pipeline, error) {
	var llm extract.LLMExtractor
	if mode == extract.ModeLLM || mode == extract.ModeHybrid {
		p, err := buildProvider(provider, model, cfg)
		if err != nil {
			log.Error().Err(err).Str("provider", provider).Msg("Failed to create vision provider")
			return nil, err
		}
		llm = vision.NewExtractor(p, time.Duration(cfg.VisionTimeout)*time.Second)
	}

	factory := func(ctx context.Context) (recognize.Recognizer, error) {
		rec, err := recognize.NewVisionRecognizer(ctx)
		if err != nil {
			if errors.Is(err, recognize.ErrMissingCredentials) {
				log.Error().Err(err).Msg("Google Cloud credentials not configured")
				return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n"+
					"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n"+
					"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
					"2. Export GOOGLE_CREDENTIALS with inline JSON:\n"+
					"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",...}'\n\n"+
					"3. Use Application Default Credentials (if gcloud is configured):\n"+
					"   gcloud auth application-default login\n\n"+
					"Original error: %w", err)
			}
			return nil, err
		}
		return rec, nil
	}

	return extract.NewPipeline(factory, llm), nil
}

// buildProvider creates the configured LLM vision provider.
func buildProvider(name, model string, cfg *config.Config) (vision.Provider, error) {
	switch name {
	case "openai":
		return vision.NewOpenAIProvider(cfg.OpenAIAPIKey, model)
	case "anthropic":
		return vision.NewAnthropicProvider(cfg.AnthropicAPIKey, model)
	case "gemini":
		return vision.NewGeminiProvider(cfg.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("unknown vision provider %q (want openai, anthropic or gemini)", name)
	}
}

func buildResolver(knownWordsPath string) (vocab.Resolver, error) {
	if knownWordsPath == "" {
		return vocab.NopResolver{}, nil
	}
	return vocab.NewFileResolver(knownWordsPath)
}

// handleExtractError provides user-friendly error messages for extraction failures
func handleExtractError(err error, log zerolog.Logger) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, extract.ErrSuperseded) {
		// User abort is not a failure.
		log.Info().Msg("Extraction canceled")
		return fmt.Errorf("extraction was canceled")
	}

	log.Error().Err(err).Msg("Extraction failed")

	errStr := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("extraction timed out. Try increasing --timeout or processing fewer images")
	case errors.Is(err, extract.ErrNoVisionExtractor):
		return fmt.Errorf("llm and hybrid modes need a vision provider; set --provider and the matching API key")
	case errors.Is(err, vision.ErrMissingAPIKey):
		return fmt.Errorf("the selected vision provider has no API key configured. Set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY")
	case errors.Is(err, recognize.ErrMissingCredentials):
		return err
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:"):
		return fmt.Errorf("Google Cloud authentication failed. Check GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.\n\nOriginal error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud Vision API rejected the request (permissions or quota): %v", err)
	default:
		return fmt.Errorf("extraction failed: %w", err)
	}
}

// outputExtractResults formats and outputs the extraction results
func outputExtractResults(result *extract.Result, mode string, imageCount int, outputPath string, jsonOutput bool, duration time.Duration, log zerolog.Logger) error {
	var outputData []byte
	var err error

	if jsonOutput {
		out := ExtractOutput{
			Words:              result.Words,
			Mode:               mode,
			ImageCount:         imageCount,
			ProcessedAt:        time.Now(),
			ProcessingDuration: duration.String(),
		}
		outputData, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		var sb strings.Builder
		for _, w := range result.Words {
			sb.WriteString(w.Term)
			if w.Reading != "" {
				sb.WriteString("\t" + w.Reading)
			}
			if w.Meaning != "" {
				sb.WriteString("\t" + w.Meaning)
			}
			if w.JLPTLevel > 0 {
				sb.WriteString(fmt.Sprintf("\tN%d", w.JLPTLevel))
			}
			if w.Known {
				sb.WriteString("\t(known)")
			}
			sb.WriteString("\n")
		}
		outputData = []byte(sb.String())
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Extraction results written to file")
	} else {
		if _, err := os.Stdout.Write(outputData); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	return nil
}
