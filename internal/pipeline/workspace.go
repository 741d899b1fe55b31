package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Workspace is a run-scoped scratch directory for chunk files and
// intermediate audio. Names are UUIDs so concurrent runs sharing a parent
// directory never collide.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh workspace under parent (os.TempDir when
// empty).
func NewWorkspace(parent string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}

	dir := filepath.Join(parent, "narrate-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	log.Debug("workspace created", "dir", dir)
	return &Workspace{Dir: dir}, nil
}

// Destroy removes the workspace and everything in it. Safe to call on an
// already-destroyed workspace.
func (w *Workspace) Destroy() {
	if err := os.RemoveAll(w.Dir); err != nil {
		log.Warn("workspace cleanup failed", "dir", w.Dir, "error", err)
		return
	}
	log.Debug("workspace destroyed", "dir", w.Dir)
}
