package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ANSI palette for line-oriented command output. The full-screen dashboard
// has its own true-color palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorLow     lipgloss.Color = "4" // Blue
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7"  // White/default
	ColorSecondary lipgloss.Color = "12" // Bright blue
	ColorMuted     lipgloss.Color = "8"  // Gray (bright black)
	ColorAccent    lipgloss.Color = "10" // Leaf green
)

// SuccessStyle renders confirmations.
func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }

// ErrorStyle renders failures.
func ErrorStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorError) }

// WarningStyle renders stale data and other soft problems.
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }

// MutedStyle renders timing and secondary details.
func MutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorMuted) }

// AccentStyle renders titles.
func AccentStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorAccent).Bold(true) }

// DisableColors switches every renderer to plain text. Used for --no-color
// and NO_COLOR.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// PrintWarning writes a single warning line to w.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, WarningStyle().Render(SymbolWarning)+" "+msg)
}
