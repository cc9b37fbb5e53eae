package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/audio"
	"github.com/CVSRohit/PodcastGen/models"
)

// ProgressEvent is reported before and after each turn is voiced.
type ProgressEvent struct {
	Turn  int         `json:"turn"`
	Total int         `json:"total"`
	Role  models.Role `json:"role"`
	Done  bool        `json:"done"`
}

// Progress receives ProgressEvents. It may be nil.
type Progress func(ProgressEvent)

// Synthesize voices every turn in order and joins the clips into one MP3.
// The first failing turn aborts the run and no podcast file is left behind.
func (s *Services) Synthesize(ctx context.Context, d models.Dialogue, apiKey string, progress Progress) (*models.PodcastAudio, error) {
	if apiKey == "" {
		return nil, &models.SynthesisError{Turn: -1, Err: models.ErrMissingCredential}
	}
	if d.Len() == 0 {
		return nil, &models.SynthesisError{Turn: -1, Err: models.ErrEmptyDialogue}
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	scratch, cleanup, err := s.workspace.Scratch()
	if err != nil {
		return nil, &models.SynthesisError{Turn: -1, Err: err}
	}
	defer cleanup()

	start := time.Now()
	clips := make([]string, 0, d.Len())
	for i, turn := range d.Turns {
		if err := ctx.Err(); err != nil {
			return nil, &models.SynthesisError{Turn: i, Role: turn.Role, Err: err}
		}
		progress(ProgressEvent{Turn: i, Total: d.Len(), Role: turn.Role})
		path, err := s.synthesizeTurn(ctx, scratch, i, turn, apiKey)
		if err != nil {
			s.logger.Error("turn synthesis failed",
				zap.Int("turn", i),
				zap.String("role", string(turn.Role)),
				zap.Error(err),
			)
			return nil, &models.SynthesisError{Turn: i, Role: turn.Role, Err: err}
		}
		clips = append(clips, path)
		progress(ProgressEvent{Turn: i, Total: d.Len(), Role: turn.Role, Done: true})
	}

	podcast, err := s.concat(d, clips)
	if err != nil {
		return nil, &models.SynthesisError{Turn: -1, Err: err}
	}
	s.logger.Info("podcast synthesized",
		zap.String("path", podcast.Path),
		zap.Int("turns", d.Len()),
		zap.Duration("audio_duration", podcast.Duration),
		zap.Duration("duration", time.Since(start)),
	)
	return podcast, nil
}

// synthesizeTurn voices one turn and writes the clip to the scratch dir as
// <index>_<role>.mp3.
func (s *Services) synthesizeTurn(ctx context.Context, scratch string, i int, turn models.Turn, apiKey string) (string, error) {
	if !turn.Role.Valid() {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownRole, turn.Role)
	}
	voice := s.voices.For(turn.Role)
	clip, err := s.speech.Synthesize(ctx, apiKey, voice, turn.Content)
	if err != nil {
		return "", err
	}
	if len(clip) == 0 {
		return "", fmt.Errorf("%w: empty audio", models.ErrUnexpectedResponse)
	}
	if _, err := audio.Parse(clip); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnexpectedResponse, err)
	}

	path := filepath.Join(scratch, fmt.Sprintf("%03d_%s.mp3", i, strings.ToLower(string(turn.Role))))
	if err := os.WriteFile(path, clip, 0o600); err != nil {
		return "", fmt.Errorf("write clip: %w", err)
	}
	s.logger.Debug("turn synthesized",
		zap.Int("turn", i),
		zap.String("role", string(turn.Role)),
		zap.String("voice", voice),
		zap.Int("bytes", len(clip)),
	)
	return path, nil
}

// concat joins the clips into a temp file and renames it into place, so a
// failed join never leaves a podcast file behind.
func (s *Services) concat(d models.Dialogue, clips []string) (_ *models.PodcastAudio, err error) {
	tmp, err := os.CreateTemp(s.workspace.OutputDir(), ".partial-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	spans, err := audio.ConcatFiles(w, clips...)
	if err != nil {
		return nil, fmt.Errorf("concatenate clips: %w", err)
	}
	if err = w.Flush(); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}

	path := s.workspace.NewOutputPath("mp3")
	if err = os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("finalize output: %w", err)
	}

	podcast := &models.PodcastAudio{Path: path, Format: "mp3"}
	for i, span := range spans {
		podcast.Segments = append(podcast.Segments, models.Segment{
			Index:    i,
			Role:     d.Turns[i].Role,
			Offset:   span.Offset,
			Bytes:    span.Bytes,
			Frames:   span.Frames,
			Duration: span.Duration,
		})
		podcast.Duration += span.Duration
	}
	return podcast, nil
}
