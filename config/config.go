package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/CVSRohit/PodcastGen/models"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderGoogle = "google"
)

var (
	defaultOpenAIVoices = models.Voices{Host: "echo", Guest: "shimmer"}
	defaultGoogleVoices = models.Voices{Host: "en-US-Standard-A", Guest: "en-US-Standard-C"}
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Provider   ProviderConfig   `yaml:"provider"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	GoogleTTS  GoogleTTSConfig  `yaml:"google_tts"`
	Generation GenerationConfig `yaml:"generation"`
	Voices     models.Voices    `yaml:"voices"`
	Audio      AudioConfig      `yaml:"audio"`
	Extract    ExtractConfig    `yaml:"extract"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	SessionSecret string   `yaml:"session_secret"`
	AllowOrigins  []string `yaml:"allow_origins"`
	MaxUploadMB   int64    `yaml:"max_upload_mb"`

	// SessionTTL is both the cookie lifetime and how long an idle session's
	// state is kept.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ProviderConfig struct {
	Text   string `yaml:"text"`
	Speech string `yaml:"speech"`
}

type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	TextModel   string `yaml:"text_model"`
	SpeechModel string `yaml:"speech_model"`
}

type GeminiConfig struct {
	Model string `yaml:"model"`
}

type GoogleTTSConfig struct {
	LanguageCode string `yaml:"language_code"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
	PromptFile      string  `yaml:"prompt_file"`
}

type AudioConfig struct {
	// OutputDir holds finished podcasts. Empty means a process-owned temp
	// directory that is removed on shutdown.
	OutputDir  string `yaml:"output_dir"`
	ScratchDir string `yaml:"scratch_dir"`
}

type ExtractConfig struct {
	URLStrategy  string        `yaml:"url_strategy"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int           `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "",
			Port:          8000,
			SessionSecret: "secret",
			AllowOrigins:  []string{"http://localhost:3000"},
			MaxUploadMB:   32,
			SessionTTL:    24 * time.Hour,
		},
		Provider: ProviderConfig{
			Text:   ProviderOpenAI,
			Speech: ProviderOpenAI,
		},
		OpenAI: OpenAIConfig{
			TextModel:   "gpt-4o-mini",
			SpeechModel: "tts-1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-1.5-flash",
		},
		GoogleTTS: GoogleTTSConfig{
			LanguageCode: "en-US",
		},
		Generation: GenerationConfig{
			MaxOutputTokens: 1000,
			Temperature:     0.7,
		},
		Voices: defaultOpenAIVoices,
		Extract: ExtractConfig{
			URLStrategy:  "paragraphs",
			UserAgent:    "PodcastGen/1.0",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 10 * 1024 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Provider.Speech == ProviderGoogle && cfg.Voices == defaultOpenAIVoices {
		cfg.Voices = defaultGoogleVoices
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PODCASTGEN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PODCASTGEN_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PODCASTGEN_TEXT_PROVIDER"); v != "" {
		c.Provider.Text = v
	}
	if v := os.Getenv("PODCASTGEN_SPEECH_PROVIDER"); v != "" {
		c.Provider.Speech = v
	}
	if v := os.Getenv("PODCASTGEN_OUTPUT_DIR"); v != "" {
		c.Audio.OutputDir = v
	}
	if v := os.Getenv("PODCASTGEN_SESSION_SECRET"); v != "" {
		c.Server.SessionSecret = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.SessionTTL < time.Second {
		return fmt.Errorf("invalid session ttl %v", c.Server.SessionTTL)
	}
	switch c.Provider.Text {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown text provider %q", c.Provider.Text)
	}
	switch c.Provider.Speech {
	case ProviderOpenAI, ProviderGoogle:
	default:
		return fmt.Errorf("unknown speech provider %q", c.Provider.Speech)
	}
	// One key serves both providers, so they must come from the same vendor.
	if (c.Provider.Speech == ProviderGoogle) != (c.Provider.Text == ProviderGemini) {
		return fmt.Errorf("speech provider %q cannot use the %s api key", c.Provider.Speech, c.Provider.Text)
	}
	switch c.Extract.URLStrategy {
	case "paragraphs", "article":
	default:
		return fmt.Errorf("unknown url strategy %q", c.Extract.URLStrategy)
	}
	if c.Voices.Host == "" || c.Voices.Guest == "" {
		return errors.New("both host and guest voices are required")
	}
	return nil
}

// DefaultAPIKey is the environment-provided credential used when the caller
// did not supply one.
func (c *Config) DefaultAPIKey() string {
	if c.Provider.Text == ProviderGemini {
		return os.Getenv("GEMINI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}
