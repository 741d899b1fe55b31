// Package engine provides the speech synthesis engines used to turn text
// chunks into audio segments, and the selection logic that picks the best
// engine available on the current host.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors for the synthesis layer. Callers match with errors.Is.
var (
	// ErrSynthesis indicates a per-chunk engine invocation failed. It is
	// fatal for the whole run; chunks are never skipped or retried.
	ErrSynthesis = errors.New("speech synthesis failed")

	// ErrMissingDependency indicates a required external tool is absent
	// and cannot be installed automatically.
	ErrMissingDependency = errors.New("missing required dependency")

	// ErrDependencyInstall indicates on-demand installation of a fallback
	// dependency failed.
	ErrDependencyInstall = errors.New("dependency installation failed")

	// ErrUnknownEngine indicates an engine name that none of the variants
	// answer to.
	ErrUnknownEngine = errors.New("unknown speech engine")
)

// Segment is one synthesized audio file, tagged with the 1-based index of
// the chunk it was produced from. Segments live inside the run's workspace
// and are written once, read once.
type Segment struct {
	Index int
	Path  string
}

// Engine converts one text chunk into one audio segment. Implementations
// hold no cross-chunk state; the same chunk always yields an equivalent
// segment. The intermediate container format differs per engine (AIFF, WAV,
// MP3) and is opaque to callers; the assembler decodes whatever it gets.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, chunk string, index int, workDir string) (Segment, error)
}

// chunkFileName builds the workspace-relative name for a chunk artifact,
// e.g. chunkFileName(3, "aiff") == "chunk_0003.aiff".
func chunkFileName(index int, ext string) string {
	return fmt.Sprintf("chunk_%04d.%s", index, ext)
}

// runCommand executes an external command under a bounded timeout, with
// stdin wired up before the process starts. It returns stdout; on failure
// the error carries the tail of stderr, which is where every synthesis tool
// puts its diagnostics.
func runCommand(ctx context.Context, timeout time.Duration, stdin string, name string, args ...string) ([]byte, error) {
	// The caller's deadline, when present, is the bound actually in
	// effect; report that one rather than the engine default.
	bound := timeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		bound = time.Until(deadline)
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	// Stdin must be attached before Start to avoid losing input to a
	// fast-exiting process.
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %v", name, bound.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("%s cancelled: %w", name, ctx.Err())
	}

	if err != nil {
		if msg := stderrTail(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// stderrTail keeps error messages single-line and bounded.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	const limit = 300
	if len(last) > limit {
		last = last[:limit]
	}
	return last
}
