package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace owns the directories a synthesis run writes to. Scratch
// directories live for one run; finished podcasts live in the output
// directory.
type Workspace struct {
	outputDir  string
	scratchDir string
	ownsOutput bool
}

// NewWorkspace prepares outputDir. An empty outputDir gets a fresh temp
// directory that Close removes.
func NewWorkspace(outputDir, scratchDir string) (*Workspace, error) {
	w := &Workspace{outputDir: outputDir, scratchDir: scratchDir}
	if outputDir == "" {
		dir, err := os.MkdirTemp("", "podcastgen-")
		if err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		w.outputDir = dir
		w.ownsOutput = true
	} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return w, nil
}

func (w *Workspace) OutputDir() string {
	return w.outputDir
}

// Scratch creates a per-run directory. The caller must call cleanup on
// every exit path.
func (w *Workspace) Scratch() (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp(w.scratchDir, "podcastgen-run-")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// NewOutputPath returns a unique path for a finished podcast.
func (w *Workspace) NewOutputPath(ext string) string {
	return filepath.Join(w.outputDir, fmt.Sprintf("podcast-%s.%s", uuid.New().String(), ext))
}

// Close removes the output directory if the workspace created it.
func (w *Workspace) Close() error {
	if !w.ownsOutput {
		return nil
	}
	return os.RemoveAll(w.outputDir)
}
