// Package audio turns per-chunk audio segments into a single MP3. All
// format work goes through ffmpeg: every engine's intermediate container
// is decoded to one canonical PCM stream, concatenated in chunk order, and
// encoded once at the end.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Canonical intermediate format. 16-bit signed little-endian mono at
// 22050Hz matches what the speech engines produce, so decoding is cheap.
const (
	pcmFormat     = "s16le"
	pcmSampleRate = "22050"
	pcmChannels   = "1"
)

const ffmpegTimeout = 60 * time.Second

// ErrFFmpegMissing indicates ffmpeg is not on PATH.
var ErrFFmpegMissing = errors.New("ffmpeg not found")

// Transcoder decodes engine output to canonical PCM and encodes the final
// MP3. It is an interface so the assembler can be tested without ffmpeg on
// the machine.
type Transcoder interface {
	DecodeToPCM(ctx context.Context, path string) ([]byte, error)
	EncodeMP3(ctx context.Context, pcm []byte, outPath string) error
}

// FFmpeg is the production Transcoder, shelling out to the ffmpeg binary.
type FFmpeg struct{}

// CheckFFmpeg verifies ffmpeg is runnable, wrapping the platform install
// hint into the error when it is not.
func CheckFFmpeg(installHint string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegMissing, installHint)
	}
	return nil
}

// DecodeToPCM converts any container ffmpeg understands (AIFF, WAV, MP3)
// into canonical raw PCM on stdout.
func (FFmpeg) DecodeToPCM(ctx context.Context, path string) ([]byte, error) {
	return runFFmpeg(ctx, nil,
		"-i", path,
		"-f", pcmFormat,
		"-ar", pcmSampleRate,
		"-ac", pcmChannels,
		"-",
	)
}

// EncodeMP3 reads canonical PCM on stdin and writes an MP3 file. ffmpeg
// writes to a sibling temp name first so a failed encode never leaves a
// truncated file at outPath.
func (FFmpeg) EncodeMP3(ctx context.Context, pcm []byte, outPath string) error {
	tmpPath := outPath + ".part"
	defer os.Remove(tmpPath)

	_, err := runFFmpeg(ctx, pcm,
		"-f", pcmFormat,
		"-ar", pcmSampleRate,
		"-ac", pcmChannels,
		"-i", "-",
		"-codec:a", "libmp3lame",
		"-qscale:a", "2",
		"-f", "mp3",
		"-y", tmpPath,
	)
	if err != nil {
		return err
	}

	return os.Rename(tmpPath, outPath)
}

func runFFmpeg(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ffmpegTimeout)
		defer cancel()
	}

	fullArgs := append([]string{"-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, "ffmpeg", fullArgs...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("ffmpeg timed out after %v", ffmpegTimeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}

	return stdout.Bytes(), nil
}
