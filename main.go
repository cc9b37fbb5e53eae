// Command podcastgen turns a PDF or a web page into a two-voice podcast.
//
// Usage:
//
//	podcastgen serve                      start the HTTP API
//	podcastgen run --url <page> [flags]   run the whole pipeline once
//
// Configuration is read from config.yaml (see --config), .env and the
// PODCASTGEN_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CVSRohit/PodcastGen/config"
	"github.com/CVSRohit/PodcastGen/extract"
	"github.com/CVSRohit/PodcastGen/llm"
	"github.com/CVSRohit/PodcastGen/prompt"
	"github.com/CVSRohit/PodcastGen/services"
	"github.com/CVSRohit/PodcastGen/storage"
	"github.com/CVSRohit/PodcastGen/tts"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "podcastgen",
	Short:         "Generate two-voice podcasts from documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file (optional)")
	rootCmd.AddCommand(serveCmd, runCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is everything a command needs, built once from the config.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	services  *services.Services
	workspace *storage.Workspace
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	model, err := llm.New(cfg.Provider.Text, cfg.OpenAI.BaseURL)
	if err != nil {
		return nil, err
	}
	params := llm.Params{
		Model:           cfg.OpenAI.TextModel,
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		Temperature:     cfg.Generation.Temperature,
	}
	if cfg.Provider.Text == config.ProviderGemini {
		params.Model = cfg.Gemini.Model
	}

	speech, err := tts.New(cfg.Provider.Speech, tts.Options{
		BaseURL:      cfg.OpenAI.BaseURL,
		Model:        cfg.OpenAI.SpeechModel,
		LanguageCode: cfg.GoogleTTS.LanguageCode,
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := prompt.Load(cfg.Generation.PromptFile)
	if err != nil {
		return nil, err
	}

	workspace, err := storage.NewWorkspace(cfg.Audio.OutputDir, cfg.Audio.ScratchDir)
	if err != nil {
		return nil, err
	}

	extractor := extract.NewExtractor(extract.Options{
		URLStrategy:  cfg.Extract.URLStrategy,
		UserAgent:    cfg.Extract.UserAgent,
		Timeout:      cfg.Extract.Timeout,
		MaxBodyBytes: cfg.Extract.MaxBodyBytes,
	}, logger.Named("extract"))

	svc := services.NewServices(services.Options{
		Extractor:  extractor,
		Model:      model,
		Params:     params,
		Prompt:     tmpl,
		Speech:     speech,
		Voices:     cfg.Voices,
		Workspace:  workspace,
		DefaultKey: cfg.DefaultAPIKey(),
		Logger:     logger.Named("pipeline"),
	})

	logger.Info("configured",
		zap.String("text_provider", cfg.Provider.Text),
		zap.String("speech_provider", cfg.Provider.Speech),
		zap.String("model", params.Model),
		zap.String("output_dir", workspace.OutputDir()),
	)
	return &app{cfg: cfg, logger: logger, services: svc, workspace: workspace}, nil
}

func (a *app) Close() {
	if err := a.workspace.Close(); err != nil {
		a.logger.Warn("remove output dir", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lc.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
