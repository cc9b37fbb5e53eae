package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the speaker of a dialogue turn.
type Role string

const (
	Host  Role = "Host"
	Guest Role = "Guest"
)

// ParseRole accepts a role label regardless of case and surrounding
// markdown emphasis.
func ParseRole(s string) (Role, error) {
	label := strings.Trim(strings.TrimSpace(s), "*_ ")
	switch strings.ToLower(label) {
	case "host":
		return Host, nil
	case "guest":
		return Guest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	return r == Host || r == Guest
}

// Turn is one attributed utterance.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Dialogue is the ordered list of turns in speaking order.
type Dialogue struct {
	Turns []Turn `json:"dialogue"`
}

func (d Dialogue) Len() int {
	return len(d.Turns)
}

// Voices maps each role to a voice identity of the speech provider.
type Voices struct {
	Host  string `json:"host" yaml:"host"`
	Guest string `json:"guest" yaml:"guest"`
}

func (v Voices) For(r Role) string {
	if r == Guest {
		return v.Guest
	}
	return v.Host
}

// Speakers carries the names the model is asked to use.
type Speakers struct {
	HostName  string `json:"host_name"`
	GuestName string `json:"guest_name"`
}

// Segment marks where a turn's clip landed in the concatenated podcast.
type Segment struct {
	Index    int           `json:"index"`
	Role     Role          `json:"role"`
	Offset   int64         `json:"offset"`
	Bytes    int64         `json:"bytes"`
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration"`
}

// PodcastAudio is the final artifact of a synthesis run.
type PodcastAudio struct {
	Path     string        `json:"path"`
	Format   string        `json:"format"`
	Duration time.Duration `json:"duration"`
	Segments []Segment     `json:"segments"`
}

// PodcastSession is the state a caller keeps between pipeline calls.
type PodcastSession struct {
	ID         string        `json:"id"`
	APIKey     string        `json:"-"`
	SourceName string        `json:"source_name,omitempty"`
	SourceText string        `json:"-"`
	Audience   string        `json:"audience,omitempty"`
	Speakers   Speakers      `json:"speakers"`
	Dialogue   *Dialogue     `json:"dialogue,omitempty"`
	Audio      *PodcastAudio `json:"audio,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
