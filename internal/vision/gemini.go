package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultGeminiModel     = "gemini-2.0-flash"
	geminiEndpointTemplate = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiMaxResponseSize  = 1 << 20
)

// GeminiProvider implements Provider against the Gemini generate-content API.
type GeminiProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inline_data,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiProvider creates a Gemini-style provider. An empty model selects
// the default.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &ProviderError{Provider: "gemini", Op: "NewGeminiProvider", Err: ErrMissingAPIKey}
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   fmt.Sprintf(geminiEndpointTemplate, model),
		httpClient: http.DefaultClient,
	}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete sends the image as inline data alongside the prompt part.
func (p *GeminiProvider) Complete(ctx context.Context, image []byte, prompt string) (string, error) {
	const op = "Complete"

	body := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{InlineData: &geminiBlobData{
						MIMEType: detectMIME(image),
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
					{Text: prompt},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrTimeout}
		}
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, geminiMaxResponseSize))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProviderError{
			Provider:   p.Name(),
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrBadStatus, truncate(string(raw), 200)),
		}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	var sb strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrEmptyReply}
	}
	return sb.String(), nil
}
