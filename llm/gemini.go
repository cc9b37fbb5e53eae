package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/CVSRohit/PodcastGen/models"
)

var _ TextModel = (*Gemini)(nil)

// Gemini implements TextModel with the Gemini generative API.
type Gemini struct{}

func (g *Gemini) Complete(ctx context.Context, apiKey, prompt string, p Params) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.Model)
	model.SetTemperature(float32(p.Temperature))
	if p.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(p.MaxOutputTokens))
	}
	model.ResponseMIMEType = "text/plain"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", models.ErrUnexpectedResponse)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", models.ErrUnexpectedResponse)
	}
	return sb.String(), nil
}
