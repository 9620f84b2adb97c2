// Package color styles console output when stdout is a terminal.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f1fa8c"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bd93f9")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

// enabled and stderrEnabled cache whether styled output should be used on
// stdout and stderr respectively.
var (
	enabled       = shouldEnable(os.Stdout)
	stderrEnabled = shouldEnable(os.Stderr)
)

func shouldEnable(f *os.File) bool {
	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Enabled returns whether styled output is active on stdout.
func Enabled() bool {
	return enabled
}

// SetEnabled overrides automatic detection for both stdout and stderr.
func SetEnabled(v bool) {
	enabled = v
	stderrEnabled = v
}

func apply(style lipgloss.Style, s string) string {
	return render(enabled, style, s)
}

func render(on bool, style lipgloss.Style, s string) string {
	if !on {
		return s
	}
	return style.Render(s)
}

// Success styles confirmations such as a saved snippet.
func Success(s string) string { return apply(successStyle, s) }

// Warn styles usage problems and empty results.
func Warn(s string) string { return apply(warnStyle, s) }

// Error styles failures.
func Error(s string) string { return apply(errorStyle, s) }

// StderrError styles a failure written to stderr, following stderr's terminal state.
func StderrError(s string) string { return render(stderrEnabled, errorStyle, s) }

// Heading styles section titles.
func Heading(s string) string { return apply(headingStyle, s) }

// Dim styles separators and metadata.
func Dim(s string) string { return apply(dimStyle, s) }
