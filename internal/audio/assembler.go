package audio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/narrate/internal/engine"
)

var (
	// ErrAssembly indicates synthesis or audio processing failed. No
	// output file exists when Assemble returns it.
	ErrAssembly = errors.New("audio assembly failed")

	// ErrEmptyInput indicates there were no chunks to synthesize.
	ErrEmptyInput = errors.New("no text to synthesize")
)

// Assembler drives an engine over a chunk sequence and merges the results
// into one MP3. Concatenation order is always chunk order, regardless of
// the order segments were produced in.
type Assembler struct {
	Transcoder Transcoder
}

func NewAssembler(t Transcoder) *Assembler {
	return &Assembler{Transcoder: t}
}

// Assemble synthesizes every chunk with eng into workDir, decodes each
// segment to canonical PCM, concatenates by ascending chunk index, and
// encodes the result to outPath. Any per-chunk failure aborts the whole
// run: no partial MP3 is ever left at outPath.
func (a *Assembler) Assemble(ctx context.Context, eng engine.Engine, chunks []string, workDir, outPath string) error {
	if len(chunks) == 0 {
		return ErrEmptyInput
	}

	start := time.Now()
	log.Info("synthesizing", "engine", eng.Name(), "chunks", len(chunks))

	segments := make([]engine.Segment, 0, len(chunks))
	for i, chunk := range chunks {
		index := i + 1
		seg, err := eng.Synthesize(ctx, chunk, index, workDir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAssembly, err)
		}
		log.Debug("chunk synthesized", "index", index, "chars", len(chunk), "file", seg.Path)
		segments = append(segments, seg)
	}

	// Engines report the index they were given; sorting makes the order
	// contract independent of how segments arrive.
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Index < segments[j].Index
	})

	var pcm []byte
	for _, seg := range segments {
		data, err := a.Transcoder.DecodeToPCM(ctx, seg.Path)
		if err != nil {
			return fmt.Errorf("%w: decoding chunk %d: %w", ErrAssembly, seg.Index, err)
		}
		pcm = append(pcm, data...)
	}

	if err := a.Transcoder.EncodeMP3(ctx, pcm, outPath); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrAssembly, outPath, err)
	}

	log.Info("audiobook written",
		"path", outPath,
		"audio", humanize.Bytes(uint64(len(pcm))),
		"took", time.Since(start).Round(time.Millisecond))
	return nil
}
