package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// gttsTimeout is short because each call is a single HTTP round trip; a
// hung call should surface quickly rather than stall the whole run.
const gttsTimeout = 30 * time.Second

// DefaultLanguage is the language code handed to the network engine when
// the caller does not choose one.
const DefaultLanguage = "en"

// GTTS synthesizes speech with the gtts-cli tool, which fronts Google's
// translate TTS endpoint. It is the fallback of last resort: it needs
// network access and the endpoint throttles aggressive callers, so
// requests are paced through a local rate limiter.
type GTTS struct {
	Language string

	limiter *rate.Limiter
}

// NewGTTS returns a gtts-cli engine speaking the given language code
// (empty means DefaultLanguage), pacing requests to one per second.
func NewGTTS(language string) *GTTS {
	if language == "" {
		language = DefaultLanguage
	}
	return &GTTS{
		Language: language,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (*GTTS) Name() string { return "gtts" }

func (g *GTTS) Synthesize(ctx context.Context, chunk string, index int, workDir string) (Segment, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	audioPath := filepath.Join(workDir, chunkFileName(index, "mp3"))

	// Text goes in on stdin; chunks routinely exceed argv comfort.
	_, err := runCommand(ctx, gttsTimeout, chunk,
		"gtts-cli", "-", "-l", g.Language, "-o", audioPath)
	if err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: gtts-cli produced no output: %w", ErrSynthesis, index, err)
	}

	return Segment{Index: index, Path: audioPath}, nil
}
