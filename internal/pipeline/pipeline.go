// Package pipeline wires extraction, cleaning, chunking, synthesis and
// assembly into the end-to-end document-to-MP3 conversion.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/narrate/internal/audio"
	"github.com/dgnsrekt/narrate/internal/engine"
	"github.com/dgnsrekt/narrate/internal/pdf"
	"github.com/dgnsrekt/narrate/internal/text"
)

// ErrInvalidInput indicates the input document is unusable (missing,
// unreadable, or empty after cleaning).
var ErrInvalidInput = errors.New("invalid input")

// Converter runs the full conversion. Collaborators are injected so the
// HTTP server and tests can swap in mock engines and transcoders.
type Converter struct {
	Engine        engine.Engine
	Assembler     *audio.Assembler
	MaxChunkChars int

	// WorkspaceParent overrides where run workspaces are created. Empty
	// means the system temp directory.
	WorkspaceParent string
}

// NewConverter builds a Converter with the default chunk budget.
func NewConverter(eng engine.Engine, asm *audio.Assembler) *Converter {
	return &Converter{
		Engine:        eng,
		Assembler:     asm,
		MaxChunkChars: text.DefaultMaxChunkChars,
	}
}

// Convert cleans rawText, chunks it, synthesizes every chunk and writes the
// assembled MP3 to outPath. The run's workspace is removed before Convert
// returns, success or not.
func (c *Converter) Convert(ctx context.Context, rawText, outPath string) error {
	cleaned := text.Clean(rawText)
	if cleaned == "" {
		return fmt.Errorf("%w: document has no speakable text", ErrInvalidInput)
	}

	chunks := text.Chunk(cleaned, c.maxChunkChars())
	log.Info("text prepared", "chars", len(cleaned), "chunks", len(chunks))

	ws, err := NewWorkspace(c.WorkspaceParent)
	if err != nil {
		return err
	}
	defer ws.Destroy()

	return c.Assembler.Assemble(ctx, c.Engine, chunks, ws.Dir, outPath)
}

// ConvertFile extracts text from the PDF at pdfPath and converts it.
func (c *Converter) ConvertFile(ctx context.Context, pdfPath, outPath string) error {
	rawText, err := pdf.Extract(pdfPath)
	if err != nil {
		return err
	}
	return c.Convert(ctx, rawText, outPath)
}

func (c *Converter) maxChunkChars() int {
	if c.MaxChunkChars > 0 {
		return c.MaxChunkChars
	}
	return text.DefaultMaxChunkChars
}
