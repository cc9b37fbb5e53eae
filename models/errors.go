package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential  = errors.New("api key is required")
	ErrNoText             = errors.New("no text available for summarization")
	ErrUnexpectedResponse = errors.New("unexpected response format")
	ErrUnsupportedSource  = errors.New("unsupported source")
	ErrEmptyDialogue      = errors.New("dialogue has no turns")
	ErrUnknownRole        = errors.New("unknown role")
)

// ExtractionKind tells why extraction failed.
type ExtractionKind string

const (
	ExtractUnsupported ExtractionKind = "unsupported"
	ExtractFetch       ExtractionKind = "fetch"
	ExtractParse       ExtractionKind = "parse"
)

type ExtractionError struct {
	Source string
	Kind   ExtractionKind
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generate dialogue: " + e.Reason
	}
	return fmt.Sprintf("generate dialogue: %s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisError reports the turn that aborted a synthesis run. Turn is -1
// when the failure is not tied to a single turn.
type SynthesisError struct {
	Turn int
	Role Role
	Err  error
}

func (e *SynthesisError) Error() string {
	if e.Turn < 0 {
		return fmt.Sprintf("synthesize podcast: %v", e.Err)
	}
	return fmt.Sprintf("synthesize turn %d (%s): %v", e.Turn, e.Role, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
