// Package prompt renders the instruction sent to the text model from a
// swappable YAML template.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/CVSRohit/PodcastGen/models"
)

//go:embed default.yaml
var defaultTemplate []byte

type Example struct {
	Role    models.Role `yaml:"role"`
	Content string      `yaml:"content"`
}

// Template is the parsed prompt resource.
type Template struct {
	PodcastName string    `yaml:"podcast_name"`
	MaxWords    int       `yaml:"max_words"`
	Body        string    `yaml:"template"`
	Examples    []Example `yaml:"examples"`

	body *template.Template
}

// Input carries the per-run values substituted into the template.
type Input struct {
	Text      string
	Audience  string
	HostName  string
	GuestName string
}

func Default() (*Template, error) {
	return Parse(defaultTemplate)
}

// Load reads a template file, falling back to the embedded default when
// path is empty.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	if strings.TrimSpace(t.Body) == "" {
		return nil, errors.New("prompt template has no body")
	}
	if t.MaxWords <= 0 {
		t.MaxWords = 750
	}
	for _, ex := range t.Examples {
		if !ex.Role.Valid() {
			return nil, fmt.Errorf("prompt example: %w: %q", models.ErrUnknownRole, ex.Role)
		}
	}
	body, err := template.New("prompt").Option("missingkey=error").Parse(t.Body)
	if err != nil {
		return nil, fmt.Errorf("parse prompt body: %w", err)
	}
	t.body = body
	return &t, nil
}

type renderData struct {
	Input
	PodcastName string
	MaxWords    int
	Examples    []Example
}

// Render produces the prompt text for one generation call.
func (t *Template) Render(in Input) (string, error) {
	if in.HostName == "" {
		in.HostName = string(models.Host)
	}
	if in.GuestName == "" {
		in.GuestName = string(models.Guest)
	}
	if strings.TrimSpace(in.Audience) == "" {
		in.Audience = "a general audience"
	}

	data := renderData{Input: in, PodcastName: t.PodcastName, MaxWords: t.MaxWords}
	for i, ex := range t.Examples {
		content, err := execute(fmt.Sprintf("example%d", i), ex.Content, data)
		if err != nil {
			return "", err
		}
		data.Examples = append(data.Examples, Example{Role: ex.Role, Content: content})
	}

	var sb strings.Builder
	if err := t.body.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}

func execute(name, text string, data renderData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}
