package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/health"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0B0F0C")
	ColorSurfaceBg = lipgloss.Color("#121A14")
	ColorBorder    = lipgloss.Color("#2A4A33")

	// Semantic colors for readings
	ColorHealthy  = lipgloss.Color("#22C55E")
	ColorWarning  = lipgloss.Color("#F59E0B")
	ColorCritical = lipgloss.Color("#EF4444")
	ColorLow      = lipgloss.Color("#3B82F6")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B8C7BC")
	ColorTextMuted     = lipgloss.Color("#6B8072")

	ColorAccent    = lipgloss.Color("#4ADE80")
	ColorAccentDim = lipgloss.Color("#16A34A")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardAlertStyle = CardStyle.
			BorderForeground(ColorCritical)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	AlertTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	OKTextStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	// Tabs in the header
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorDarkBg).
			Background(ColorAccent).
			Bold(true).
			Padding(0, 1)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)
)

// Connectivity glyphs
const (
	GlyphConnected    = "◉"
	GlyphDisconnected = "◌"
	GlyphWaiting      = "◐"
)

// StateColor maps a classification to its color. Idle readings are muted.
func StateColor(s health.State) lipgloss.Color {
	switch s {
	case health.StateLow:
		return ColorLow
	case health.StateIdeal:
		return ColorHealthy
	case health.StateHigh:
		return ColorCritical
	default:
		return ColorTextMuted
	}
}

// StateStyle renders a classification label in its color.
func StateStyle(s health.State) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StateColor(s)).Bold(s != health.StateIdle)
}

// PillStyle styles a status pill; alerts are red, everything else green
// unless there is no data yet.
func PillStyle(text string, alert bool) lipgloss.Style {
	bg := ColorHealthy
	switch {
	case alert:
		bg = ColorCritical
	case text == "" || text == "No data":
		bg = ColorTextMuted
	}
	return lipgloss.NewStyle().
		Foreground(ColorDarkBg).
		Background(bg).
		Bold(true).
		Padding(0, 1)
}

// ProgressBar renders a bar for a 0-100 value colored by its classification.
func ProgressBar(width int, percent float64, state health.State) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(StateColor(state)).Render(bar)
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int, valueColor lipgloss.Color) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(valueColor).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
