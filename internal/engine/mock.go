package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MockEngine is a deterministic in-process engine for tests. Each chunk
// becomes a small raw PCM file whose bytes are derived from the chunk
// index, so downstream ordering bugs show up as wrong bytes rather than
// passing silently.
type MockEngine struct {
	// FailAt, when non-zero, makes synthesis of that chunk index fail.
	FailAt int

	mu    sync.Mutex
	calls []int
}

func NewMockEngine() *MockEngine { return &MockEngine{} }

func (*MockEngine) Name() string { return "mock" }

func (m *MockEngine) Synthesize(ctx context.Context, chunk string, index int, workDir string) (Segment, error) {
	if err := ctx.Err(); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	m.mu.Lock()
	m.calls = append(m.calls, index)
	m.mu.Unlock()

	if m.FailAt != 0 && index == m.FailAt {
		return Segment{}, fmt.Errorf("%w: chunk %d: mock failure", ErrSynthesis, index)
	}

	audioPath := filepath.Join(workDir, chunkFileName(index, "pcm"))
	if err := os.WriteFile(audioPath, MockPCM(index), 0o644); err != nil {
		return Segment{}, fmt.Errorf("%w: chunk %d: %w", ErrSynthesis, index, err)
	}

	return Segment{Index: index, Path: audioPath}, nil
}

// Calls reports the chunk indexes synthesized so far, in call order.
func (m *MockEngine) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// MockPCM is the payload MockEngine writes for a chunk index. Exported so
// assembler tests can assert on concatenation order.
func MockPCM(index int) []byte {
	return []byte(fmt.Sprintf("pcm-%04d|", index))
}
