package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
)

const (
	cardMinWidth = 22
	lightBarMin  = 10
)

// renderCard renders one metric tile: label, value, classification and the
// ideal range. The light card also gets a 0-100 bar.
func renderCard(c dashboard.Card, lightPercent float64, width int) string {
	inner := width - 4
	if inner < cardMinWidth-4 {
		inner = cardMinWidth - 4
	}

	lines := []string{
		LabelStyle.Render(c.Metric.Label()),
		ValueStyle.Render(c.Text),
		StateStyle(c.Classification.State).Render(c.Classification.Label),
		MutedStyle.Render("Ideal " + formatRange(c.Metric, c.Range)),
	}
	if c.Metric == health.Light {
		barWidth := inner
		if barWidth < lightBarMin {
			barWidth = lightBarMin
		}
		lines = append(lines, ProgressBar(barWidth, lightPercent, c.Classification.State))
	}

	style := CardStyle.Width(inner + 2)
	if c.Classification.State == health.StateHigh || c.Classification.State == health.StateLow {
		style = CardAlertStyle.Width(inner + 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderCards lays the three tiles out side by side when they fit,
// stacked otherwise.
func renderCards(s dashboard.Snapshot, totalWidth int) string {
	cards := s.Cards()
	perRow := len(cards)
	width := cardMinWidth + 6
	if totalWidth > 0 {
		width = totalWidth/len(cards) - 1
		if width < cardMinWidth {
			perRow = 1
			width = totalWidth - 2
		}
	}

	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = renderCard(c, s.LightPercent, width)
	}
	if perRow == 1 {
		return lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// formatRange renders "18–28 °C" style bounds for a metric.
func formatRange(m health.Metric, r api.Range) string {
	unit := " %"
	if m == health.Temperature {
		unit = " °C"
	}
	return fmt.Sprintf("%g–%g%s", r.Min, r.Max, unit)
}

// renderRecPanel renders the recommendation panel.
func renderRecPanel(p dashboard.RecPanel, width int) string {
	lines := []string{
		PillStyle(p.Pill, p.Alert).Render(p.Pill) + " " + ValueStyle.Render(p.Summary),
		LabelStyle.Render(p.Details),
	}

	if len(p.Alerts) > 0 {
		lines = append(lines, "", AlertTextStyle.Bold(true).Render("Alerts"))
		for _, a := range p.Alerts {
			lines = append(lines, AlertTextStyle.Render("  ! "+a.String()))
		}
	}
	if len(p.Tips) > 0 {
		lines = append(lines, "", OKTextStyle.Bold(true).Render("Tips"))
		for _, t := range p.Tips {
			lines = append(lines, LabelStyle.Render("  • "+t.String()))
		}
	}
	if p.Empty != "" {
		lines = append(lines, "", MutedStyle.Render(p.Empty))
	}

	style := CardStyle
	if p.Alert {
		style = CardAlertStyle
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderProfile renders the plant view body.
func renderProfile(p *api.PlantProfile, th health.Thresholds) string {
	if p == nil {
		return MutedStyle.Render("No selection")
	}

	name := p.Name
	if name == "" {
		name = p.ID
	}

	lines := []string{TitleStyle.Render(name)}
	if p.Description != "" {
		lines = append(lines, LabelStyle.Render(p.Description))
	}
	lines = append(lines, "", RangesLine(th))

	lines = append(lines, "", ValueStyle.Render("Tips"))
	if len(p.Tips) == 0 {
		lines = append(lines, MutedStyle.Render("  No tips for this plant."))
	}
	for _, t := range p.Tips {
		lines = append(lines, LabelStyle.Render("  • "+t.Message))
	}

	if p.Image != "" {
		lines = append(lines, "", MutedStyle.Render("Image: "+p.Image))
	}
	return strings.Join(lines, "\n")
}

// RangesLine summarizes the ideal bands: "Temperature 18–28 °C · Humidity 50–75 % · Light (%) 20–80 %".
func RangesLine(th health.Thresholds) string {
	parts := make([]string, 0, 3)
	for _, m := range []health.Metric{health.Temperature, health.Humidity, health.Light} {
		parts = append(parts, m.Label()+" "+formatRange(m, th.For(m)))
	}
	return LabelStyle.Render(strings.Join(parts, " · "))
}
