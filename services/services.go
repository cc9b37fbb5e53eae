package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/extract"
	"github.com/CVSRohit/PodcastGen/llm"
	"github.com/CVSRohit/PodcastGen/models"
	"github.com/CVSRohit/PodcastGen/prompt"
	"github.com/CVSRohit/PodcastGen/storage"
	"github.com/CVSRohit/PodcastGen/tts"
)

// Services runs the extraction, dialogue and speech stages. It holds no
// per-run state; callers pass everything a stage needs.
type Services struct {
	extractor  *extract.Extractor
	model      llm.TextModel
	params     llm.Params
	prompt     *prompt.Template
	speech     tts.Synthesizer
	voices     models.Voices
	workspace  *storage.Workspace
	defaultKey string
	logger     *zap.Logger
}

type Options struct {
	Extractor  *extract.Extractor
	Model      llm.TextModel
	Params     llm.Params
	Prompt     *prompt.Template
	Speech     tts.Synthesizer
	Voices     models.Voices
	Workspace  *storage.Workspace
	DefaultKey string
	Logger     *zap.Logger
}

func NewServices(opts Options) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		extractor:  opts.Extractor,
		model:      opts.Model,
		params:     opts.Params,
		prompt:     opts.Prompt,
		speech:     opts.Speech,
		voices:     opts.Voices,
		workspace:  opts.Workspace,
		defaultKey: opts.DefaultKey,
		logger:     logger,
	}
}

// ResolveAPIKey prefers the caller's key over the environment default.
func (s *Services) ResolveAPIKey(sessionKey string) (string, error) {
	if k := strings.TrimSpace(sessionKey); k != "" {
		return k, nil
	}
	if s.defaultKey != "" {
		return s.defaultKey, nil
	}
	return "", models.ErrMissingCredential
}

// Extract returns the source's text. See extract.Extractor.Extract.
func (s *Services) Extract(ctx context.Context, src extract.Source) (string, error) {
	return s.extractor.Extract(ctx, src)
}

func (s *Services) Voices() models.Voices {
	return s.voices
}
