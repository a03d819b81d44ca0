// Package ui provides terminal styling for chefvault CLI output.
// Colors adapt to light and dark terminals via lipgloss adaptive colors.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Semantic first: commands reference status colors, never raw hexes.
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#2da44e", // green
		Dark:  "#57d989",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#bf8700", // amber
		Dark:  "#e3b341",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#cf222e", // red
		Dark:  "#ff7b72",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#6e7781", // gray
		Dark:  "#8b949e",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#0969da", // blue
		Dark:  "#79c0ff",
	}
)

// Status styles - consistent across all commands
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// HeaderStyle for table headers and section titles
var HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// IDStyle for recipe ids in listings
var IDStyle = lipgloss.NewStyle().Bold(true)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
	IconInfo = "ℹ"
)

// Detail line prefix for hierarchical output (doctor findings)
const (
	DetailPrefix = "└─ "
	Indent       = "  "
)

// SeparatorLight divides report sections
const SeparatorLight = "──────────────────────────────────────────"

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderHeader renders a section header in uppercase with accent color
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// RenderID renders a recipe id for listings
func RenderID(s string) string {
	return IDStyle.Render(s)
}

// RenderSeparator renders the separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// RenderPassIcon renders the pass icon with styling
func RenderPassIcon() string {
	return PassStyle.Render(IconPass)
}

// RenderWarnIcon renders the warning icon with styling
func RenderWarnIcon() string {
	return WarnStyle.Render(IconWarn)
}

// RenderFailIcon renders the fail icon with styling
func RenderFailIcon() string {
	return FailStyle.Render(IconFail)
}

// RenderSkipIcon renders the skip icon with styling
func RenderSkipIcon() string {
	return MutedStyle.Render(IconSkip)
}

// RenderInfoIcon renders the info icon with styling
func RenderInfoIcon() string {
	return AccentStyle.Render(IconInfo)
}
