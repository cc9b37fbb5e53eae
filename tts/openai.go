package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"

	"github.com/CVSRohit/PodcastGen/llm"
)

var _ Synthesizer = (*OpenAI)(nil)

// OpenAI implements Synthesizer with the audio speech endpoint.
type OpenAI struct {
	BaseURL string
	Model   string
}

func (o *OpenAI) Synthesize(ctx context.Context, apiKey, voice, text string) ([]byte, error) {
	client := llm.NewOpenAIClient(apiKey, o.BaseURL)

	model := o.Model
	if model == "" {
		model = "tts-1"
	}
	resp, err := client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}
	return audio, nil
}
