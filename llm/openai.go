package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/CVSRohit/PodcastGen/models"
)

var _ TextModel = (*OpenAI)(nil)

// OpenAI implements TextModel with the chat completions API.
type OpenAI struct {
	BaseURL string
}

// NewOpenAIClient builds a client that never retries on its own.
func NewOpenAIClient(apiKey, baseURL string) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return openai.NewClient(opts...)
}

func (o *OpenAI) Complete(ctx context.Context, apiKey, prompt string, p Params) (string, error) {
	client := NewOpenAIClient(apiKey, o.BaseURL)

	params := openai.ChatCompletionNewParams{
		Model:       p.Model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(p.Temperature),
	}
	if p.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxOutputTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", models.ErrUnexpectedResponse)
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("blocked: %s", choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return "", fmt.Errorf("%w: no content", models.ErrUnexpectedResponse)
	}
	return choice.Message.Content, nil
}
