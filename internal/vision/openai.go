package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider against any OpenAI-style chat completion
// endpoint with vision support.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI-style provider. An empty model selects
// the default.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, &ProviderError{Provider: "openai", Op: "NewOpenAIProvider", Err: ErrMissingAPIKey}
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends the image as a base64 data URL in a multi-part user message.
func (p *OpenAIProvider) Complete(ctx context.Context, image []byte, prompt string) (string, error) {
	const op = "Complete"

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		detectMIME(image), base64.StdEncoding.EncodeToString(image))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: 2048,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrTimeout}
		}
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: p.Name(), Op: op, Err: ErrEmptyReply}
	}
	return resp.Choices[0].Message.Content, nil
}
