package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

var _ Synthesizer = (*Google)(nil)

// Google implements Synthesizer with Cloud Text-to-Speech.
type Google struct {
	LanguageCode string
}

func (g *Google) Synthesize(ctx context.Context, apiKey, voice, text string) ([]byte, error) {
	client, err := texttospeech.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating text-to-speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.SynthesizeSpeech(ctx, g.request(voice, text))
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}

func (g *Google) request(voice, text string) *texttospeechpb.SynthesizeSpeechRequest {
	lang := g.LanguageCode
	if lang == "" {
		lang = "en-US"
	}
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
}
