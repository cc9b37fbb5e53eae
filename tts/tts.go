// Package tts wraps the speech providers that voice each dialogue turn.
package tts

import (
	"context"
	"fmt"
)

// Synthesizer turns one line of text into MP3 audio spoken by voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, apiKey, voice, text string) ([]byte, error)
}

type Options struct {
	BaseURL      string
	Model        string
	LanguageCode string
}

// New returns the Synthesizer for a provider name.
func New(provider string, opts Options) (Synthesizer, error) {
	switch provider {
	case "openai":
		return &OpenAI{BaseURL: opts.BaseURL, Model: opts.Model}, nil
	case "google":
		return &Google{LanguageCode: opts.LanguageCode}, nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", provider)
	}
}
