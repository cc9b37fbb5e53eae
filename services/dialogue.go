package services

import (
	"bufio"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/prompt"
)

type GenerateRequest struct {
	Text     string
	Audience string
	Speakers models.Speakers
}

// GenerateDialogue asks the text model for a podcast script and parses it
// into turns. It makes exactly one model call.
func (s *Services) GenerateDialogue(ctx context.Context, req GenerateRequest, apiKey string) (models.Dialogue, error) {
	if apiKey == "" {
		return models.Dialogue{}, &models.GenerationError{Reason: "missing credential", Err: models.ErrMissingCredential}
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.Dialogue{}, &models.GenerationError{Reason: "empty source", Err: models.ErrNoText}
	}

	text, err := s.prompt.Render(prompt.Input{
		Text:      req.Text,
		Audience:  req.Audience,
		HostName:  req.Speakers.HostName,
		GuestName: req.Speakers.GuestName,
	})
	if err != nil {
		return models.Dialogue{}, &models.GenerationError{Reason: "prompt", Err: err}
	}

	start := time.Now()
	s.logger.Info("generating dialogue",
		zap.String("model", s.params.Model),
		zap.Int("source_length", len(req.Text)),
		zap.String("audience", req.Audience),
	)
	resp, err := s.model.Complete(ctx, apiKey, text, s.params)
	if err != nil {
		s.logger.Error("dialogue generation failed", zap.Error(err))
		reason := "model call failed"
		if errors.Is(err, models.ErrUnexpectedResponse) {
			reason = "unexpected response format"
		}
		return models.Dialogue{}, &models.GenerationError{Reason: reason, Err: err}
	}
	if strings.TrimSpace(resp) == "" {
		return models.Dialogue{}, &models.GenerationError{Reason: "unexpected response format", Err: models.ErrUnexpectedResponse}
	}

	dialogue := ParseResponse(resp, req.Speakers)
	s.logger.Info("dialogue generated",
		zap.Int("turns", dialogue.Len()),
		zap.Int("response_length", len(resp)),
		zap.Duration("duration", time.Since(start)),
	)
	s.logger.Debug("model response", zap.String("text", resp))
	return dialogue, nil
}

type prefix struct {
	text string
	role models.Role
}

// ParseResponse keeps the lines that start with a known speaker label and
// drops everything else. The matched label is removed by its own length.
func ParseResponse(text string, speakers models.Speakers) models.Dialogue {
	prefixes := speakerPrefixes(speakers)

	var d models.Dialogue
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		for _, p := range prefixes {
			if strings.HasPrefix(line, p.text) {
				d.Turns = append(d.Turns, models.Turn{
					Role:    p.role,
					Content: strings.TrimSpace(line[len(p.text):]),
				})
				break
			}
		}
	}
	return d
}

func speakerPrefixes(speakers models.Speakers) []prefix {
	labels := map[models.Role][]string{
		models.Host:  {string(models.Host)},
		models.Guest: {string(models.Guest)},
	}
	reserved := map[string]bool{string(models.Host): true, string(models.Guest): true}
	if n := strings.TrimSpace(speakers.HostName); n != "" && !reserved[n] {
		labels[models.Host] = append(labels[models.Host], n)
	}
	if n := strings.TrimSpace(speakers.GuestName); n != "" && !reserved[n] && n != strings.TrimSpace(speakers.HostName) {
		labels[models.Guest] = append(labels[models.Guest], n)
	}

	var out []prefix
	for _, role := range []models.Role{models.Host, models.Guest} {
		for _, l := range labels[role] {
			for _, form := range []string{l + ":", "**" + l + ":**", "**" + l + "**:", "**" + l + ":"} {
				out = append(out, prefix{text: form, role: role})
			}
		}
	}
	// "**Host:**" must win over "**Host:"
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].text) > len(out[j].text) })
	return out
}
