package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo is shown at the top of line-oriented commands.
type HeaderInfo struct {
	Version string
	Tagline string
	Backend string
}

// HeaderWidth is the width of the divider under the header.
const HeaderWidth = 50

// RenderHeader renders the command banner.
func RenderHeader(info HeaderInfo) string {
	var out strings.Builder

	out.WriteString(AccentStyle().Render("plantdash"))
	if info.Version != "" {
		out.WriteString(" ")
		out.WriteString(lipgloss.NewStyle().Foreground(ColorInfo).Render(info.Version))
	}
	out.WriteString("\n")

	if info.Tagline != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Tagline))
		out.WriteString("\n")
	}
	if info.Backend != "" {
		out.WriteString(MutedStyle().Render("backend " + info.Backend))
		out.WriteString("\n")
	}

	out.WriteString(MutedStyle().Render(strings.Repeat("━", HeaderWidth)))
	out.WriteString("\n")
	return out.String()
}

// PrintHeader writes the banner to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}
