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
	defaultAnthropicModel    = "claude-3-5-haiku-latest"
	anthropicEndpoint        = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion      = "2023-06-01"
	anthropicMaxReplyTokens  = 2048
	anthropicMaxResponseSize = 1 << 20
)

// AnthropicProvider implements Provider against the Anthropic messages API.
type AnthropicProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicProvider creates an Anthropic-style provider. An empty model
// selects the default.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, &ProviderError{Provider: "anthropic", Op: "NewAnthropicProvider", Err: ErrMissingAPIKey}
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   anthropicEndpoint,
		httpClient: http.DefaultClient,
	}, nil
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends the image as a base64 content block followed by the prompt.
func (p *AnthropicProvider) Complete(ctx context.Context, image []byte, prompt string) (string, error) {
	const op = "Complete"

	body := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicMaxReplyTokens,
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicContent{
					{
						Type: "image",
						Source: &anthropicSource{
							Type:      "base64",
							MediaType: detectMIME(image),
							Data:      base64.StdEncoding.EncodeToString(image),
						},
					},
					{Type: "text", Text: prompt},
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
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrTimeout}
		}
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, anthropicMaxResponseSize))
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

	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrEmptyReply}
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
