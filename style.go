package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

var (
	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "205", Dark: "212"})

	paragraphStyle = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2)
)

// keyword renders a string we want to draw attention to.
func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph formats help text as an indented block.
func paragraph(s string) string {
	return paragraphStyle.Render(s)
}

// isTTY reports whether stdout is a terminal; styled output is disabled
// when it is not.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// setupLog configures the global logger: debug level when requested, and
// an optional log file for runs whose terminal output matters.
func setupLog(logFile string) error {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}
	if !isTTY() {
		log.SetColorProfile(lipgloss.ColorProfile())
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
	}
	return nil
}
