package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output is being consumed by a program rather
// than a person: CV_AGENT is set, or stdout is not a terminal. Agent mode
// skips markdown rendering and decorative output.
func IsAgentMode() bool {
	if os.Getenv("CV_AGENT") != "" {
		return true
	}
	return !IsTerminal()
}

// ShouldUseColor decides whether styled output is appropriate.
//
// Precedence: NO_COLOR always wins (https://no-color.org), then
// CLICOLOR_FORCE forces color on, then CLICOLOR=0 turns it off, then the
// terminal itself decides (TTY with a non-ASCII termenv profile).
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if !IsTerminal() {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// ShouldUseEmoji reports whether status icons should use unicode symbols.
// CV_NO_EMOJI opts out; non-terminal output never gets emoji.
func ShouldUseEmoji() bool {
	if os.Getenv("CV_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// DisableColor turns styling off for the whole process. Called by the root
// command for --no-color and when ShouldUseColor is false, so lipgloss
// styles and fatih/color output degrade together.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	color.NoColor = true
}
