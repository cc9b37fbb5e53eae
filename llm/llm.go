// Package llm wraps the generative text providers used to write dialogues.
package llm

import (
	"context"
	"fmt"
)

// Params are the sampling settings for one completion.
type Params struct {
	Model           string
	MaxOutputTokens int
	Temperature     float64
}

// TextModel sends a single user prompt and returns the model's text.
type TextModel interface {
	Complete(ctx context.Context, apiKey, prompt string, p Params) (string, error)
}

// New returns the TextModel for a provider name.
func New(provider, baseURL string) (TextModel, error) {
	switch provider {
	case "openai":
		return &OpenAI{BaseURL: baseURL}, nil
	case "gemini":
		return &Gemini{}, nil
	default:
		return nil, fmt.Errorf("unknown text provider %q", provider)
	}
}
