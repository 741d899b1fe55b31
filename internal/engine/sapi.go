package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const sapiTimeout = 2 * time.Minute

// sapiScript renders stdin to a WAV file through the System.Speech
// synthesizer. The text arrives on stdin so it never needs escaping into
// the script itself.
const sapiScript = `Add-Type -AssemblyName System.Speech
$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer
$synth.SetOutputToWaveFile($args[0])
$synth.Speak([Console]::In.ReadToEnd())
$synth.Dispose()`

// SAPI synthesizes speech through the Windows Speech API via PowerShell.
// Like `say` it is fully offline, so it outranks the network engine on
// Windows hosts.
type SAPI struct{}

func (SAPI) Name() string { return "sapi" }

func (s SAPI) Synthesize(ctx context.Context, chunk string, index int, workDir string) (Segment, error) {
	audioPath := filepath.Join(workDir, chunkFileName(index, "wav"))

	_, err := runCommand(ctx, sapiTimeout, chunk,
		"powershell", "-NoProfile", "-NonInteractive", "-Command", sapiScript, audioPath)
	if err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: sapi produced no output: %w", ErrSynthesis, index, err)
	}

	return Segment{Index: index, Path: audioPath}, nil
}
