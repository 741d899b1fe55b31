package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestChunkFileName(t *testing.T) {
	tests := []struct {
		index int
		ext   string
		want  string
	}{
		{1, "aiff", "chunk_0001.aiff"},
		{42, "wav", "chunk_0042.wav"},
		{9999, "mp3", "chunk_9999.mp3"},
	}
	for _, tt := range tests {
		if got := chunkFileName(tt.index, tt.ext); got != tt.want {
			t.Errorf("chunkFileName(%d, %q) = %q, want %q", tt.index, tt.ext, got, tt.want)
		}
	}
}

func TestMockEngineWritesSegment(t *testing.T) {
	dir := t.TempDir()
	m := NewMockEngine()

	seg, err := m.Synthesize(context.Background(), "hello", 3, dir)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if seg.Index != 3 {
		t.Errorf("segment index = %d, want 3", seg.Index)
	}
	if filepath.Base(seg.Path) != "chunk_0003.pcm" {
		t.Errorf("segment path = %q, want chunk_0003.pcm", seg.Path)
	}

	data, err := os.ReadFile(seg.Path)
	if err != nil {
		t.Fatalf("reading segment: %v", err)
	}
	if !bytes.Equal(data, MockPCM(3)) {
		t.Errorf("segment bytes = %q, want %q", data, MockPCM(3))
	}
}

func TestMockEngineFailAt(t *testing.T) {
	dir := t.TempDir()
	m := NewMockEngine()
	m.FailAt = 2

	if _, err := m.Synthesize(context.Background(), "a", 1, dir); err != nil {
		t.Fatalf("chunk 1: %v", err)
	}
	_, err := m.Synthesize(context.Background(), "b", 2, dir)
	if !errors.Is(err, ErrSynthesis) {
		t.Errorf("chunk 2 error = %v, want ErrSynthesis", err)
	}

	if got := m.Calls(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Calls() = %v, want [1 2]", got)
	}
}

func TestMockEngineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockEngine()
	_, err := m.Synthesize(ctx, "a", 1, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunCommandStdin(t *testing.T) {
	out, err := runCommand(context.Background(), sayTimeout, "hello stdin", "cat")
	if err != nil {
		t.Fatalf("runCommand: %v", err)
	}
	if string(out) != "hello stdin" {
		t.Errorf("stdout = %q, want %q", out, "hello stdin")
	}
}

func TestRunCommandFailureCarriesStderr(t *testing.T) {
	_, err := runCommand(context.Background(), sayTimeout, "",
		"sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !bytes.Contains([]byte(got), []byte("boom")) {
		t.Errorf("error %q does not carry stderr", got)
	}
}

func TestRunCommandReportsCallerDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runCommand(ctx, sayTimeout, "", "sleep", "10")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("error = %v, want timeout", err)
	}
	// The message reflects the deadline in effect, not the engine default.
	if strings.Contains(err.Error(), sayTimeout.String()) {
		t.Errorf("error %q reports the default bound instead of the caller's deadline", err)
	}
}

func TestRunCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runCommand(ctx, sayTimeout, "", "sleep", "10")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestStderrTail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  \n ", ""},
		{"one line", "one line"},
		{"first\nsecond\nlast  ", "last"},
	}
	for _, tt := range tests {
		if got := stderrTail(tt.in); got != tt.want {
			t.Errorf("stderrTail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
