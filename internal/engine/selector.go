package engine

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

const pipInstallTimeout = 2 * time.Minute

// Selector picks the speech engine for a run. Preference order is local
// first: `say` on hosts that have it, the Windows Speech API on Windows,
// and gtts-cli as the network fallback, installed on demand through pip
// when absent.
type Selector struct {
	// Language is passed through to the network engine.
	Language string

	// Seams for tests; zero values use the real host.
	lookPath func(string) (string, error)
	goos     string
	install  func(ctx context.Context, pip string) error
}

func NewSelector(language string) *Selector {
	return &Selector{Language: language}
}

// Select returns the best available engine, or a name-forced one when
// name is non-empty. Forcing a name still verifies the engine's external
// tool is present.
func (s *Selector) Select(ctx context.Context, name string) (Engine, error) {
	if name != "" {
		return s.forced(ctx, name)
	}

	if _, err := s.look("say"); err == nil {
		return Say{}, nil
	}

	// PowerShell ships with Windows; its absence is a broken host, not a
	// reason to silently substitute the network engine.
	if s.os() == "windows" {
		if _, err := s.look("powershell"); err != nil {
			return nil, fmt.Errorf("%w: powershell", ErrMissingDependency)
		}
		log.Warn("say not found, falling back to Windows speech")
		return SAPI{}, nil
	}

	log.Warn("no local speech engine found, falling back to gtts-cli")
	if err := s.ensureGTTS(ctx); err != nil {
		return nil, err
	}
	return NewGTTS(s.Language), nil
}

func (s *Selector) forced(ctx context.Context, name string) (Engine, error) {
	switch name {
	case "say":
		if _, err := s.look("say"); err != nil {
			return nil, fmt.Errorf("%w: say", ErrMissingDependency)
		}
		return Say{}, nil
	case "sapi":
		if _, err := s.look("powershell"); err != nil {
			return nil, fmt.Errorf("%w: powershell", ErrMissingDependency)
		}
		return SAPI{}, nil
	case "gtts":
		if err := s.ensureGTTS(ctx); err != nil {
			return nil, err
		}
		return NewGTTS(s.Language), nil
	case "mock":
		return NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// ensureGTTS makes gtts-cli runnable, installing it through pip when it is
// missing. Installation is attempted with pip, then pip3.
func (s *Selector) ensureGTTS(ctx context.Context) error {
	if _, err := s.look("gtts-cli"); err == nil {
		return nil
	}

	var pip string
	for _, candidate := range []string{"pip", "pip3"} {
		if _, err := s.look(candidate); err == nil {
			pip = candidate
			break
		}
	}
	if pip == "" {
		return fmt.Errorf("%w: gtts-cli (and no pip available to install it)", ErrMissingDependency)
	}

	log.Info("installing gtts-cli", "pip", pip)
	if err := s.runInstall(ctx, pip); err != nil {
		return fmt.Errorf("%w: %w", ErrDependencyInstall, err)
	}

	if _, err := s.look("gtts-cli"); err != nil {
		return fmt.Errorf("%w: gtts-cli still missing after install", ErrDependencyInstall)
	}
	return nil
}

func (s *Selector) look(name string) (string, error) {
	if s.lookPath != nil {
		return s.lookPath(name)
	}
	return exec.LookPath(name)
}

func (s *Selector) os() string {
	if s.goos != "" {
		return s.goos
	}
	return runtime.GOOS
}

func (s *Selector) runInstall(ctx context.Context, pip string) error {
	if s.install != nil {
		return s.install(ctx, pip)
	}
	_, err := runCommand(ctx, pipInstallTimeout, "", pip, "install", "--user", "gTTS")
	return err
}
