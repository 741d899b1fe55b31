package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// sayTimeout bounds one `say` invocation. Local synthesis is fast; two
// minutes covers even a maximum-size chunk on a loaded machine.
const sayTimeout = 2 * time.Minute

// Say synthesizes speech with the macOS `say` command. It is the preferred
// engine when present: fully offline, no rate limits, and the system voice.
type Say struct{}

func (Say) Name() string { return "say" }

// Synthesize writes the chunk to a text file in the workspace and renders it
// to AIFF. `say` reads from a file rather than argv so that chunk size never
// collides with OS argument limits.
func (s Say) Synthesize(ctx context.Context, chunk string, index int, workDir string) (Segment, error) {
	txtPath := filepath.Join(workDir, chunkFileName(index, "txt"))
	audioPath := filepath.Join(workDir, chunkFileName(index, "aiff"))

	if err := os.WriteFile(txtPath, []byte(chunk), 0o644); err != nil {
		return Segment{}, fmt.Errorf("%w: writing chunk %d: %w", ErrSynthesis, index, err)
	}

	if _, err := runCommand(ctx, sayTimeout, "", "say", "-f", txtPath, "-o", audioPath); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: say produced no output: %w", ErrSynthesis, index, err)
	}

	return Segment{Index: index, Path: audioPath}, nil
}
