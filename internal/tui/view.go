package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/ui"
)

const defaultWidth = 96

// renderDashboard renders header, the current view and the footer.
func (m Model) renderDashboard() string {
	snap := m.dash.Snapshot()

	var body string
	switch {
	case !m.booted:
		body = LabelStyle.Render(m.spin.View() + " Loading plant catalog...")
	case m.SetupOpen():
		body = m.renderSetupOverlay()
	default:
		switch m.view {
		case ViewPlant:
			body = m.renderPlantView()
		case ViewConfig:
			body = m.renderConfigView()
		default:
			body = m.renderHomeView(snap)
		}
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

// renderHeader renders the title, tabs, plant label and status pills.
func (m Model) renderHeader(s dashboard.Snapshot) string {
	title := TitleStyle.Render("plantdash")

	tabs := make([]string, 0, len(Views))
	for i, v := range Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}

	pill := PillStyle(s.SystemStatus, s.SystemAlert).Render(s.SystemStatus)

	device := lipgloss.NewStyle().Foreground(connectivityColor(s)).
		Render(connectivityGlyph(s) + " " + s.DeviceStatus)

	busy := ""
	if s.State == dashboard.Polling {
		busy = " " + m.spin.View()
	}

	line1 := title + "  " + strings.Join(tabs, "")
	line2 := LabelStyle.Render(m.ctrl.PlantLabel()) + "  " + pill + "  " + device +
		MutedStyle.Render("  updated "+s.LastUpdate) + busy

	return HeaderStyle.Render(line1 + "\n" + line2)
}

func connectivityGlyph(s dashboard.Snapshot) string {
	if !s.Reachable {
		return GlyphDisconnected
	}
	switch s.Connectivity {
	case health.Connected:
		return GlyphConnected
	case health.Disconnected:
		return GlyphDisconnected
	default:
		return GlyphWaiting
	}
}

func connectivityColor(s dashboard.Snapshot) lipgloss.Color {
	if !s.Reachable {
		return ColorCritical
	}
	switch s.Connectivity {
	case health.Connected:
		return ColorHealthy
	case health.Disconnected:
		return ColorWarning
	default:
		return ColorTextMuted
	}
}

// renderHomeView renders the cards, recommendations and charts.
func (m Model) renderHomeView(s dashboard.Snapshot) string {
	width := m.contentWidth()

	sections := []string{
		renderCards(s, width),
		renderRecPanel(s.Recs, width),
	}

	charts := make([]string, 0, len(dashboard.Channels))
	chartWidth := width
	if width >= 3*40 {
		chartWidth = width/3 - 1
	}
	for _, ch := range dashboard.Channels {
		charts = append(charts, m.chartFor(ch).View(chartWidth, chartHeight))
	}
	if chartWidth < width {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(charts)...))
	} else {
		sections = append(sections, charts...)
	}

	return strings.Join(sections, "\n")
}

func joinWithGap(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, p)
	}
	return out
}

// chartFor returns the renderer the chart set created for a channel, or an
// empty chart before the first cycle.
func (m Model) chartFor(ch dashboard.ChannelStyle) *BrailleChart {
	if c, ok := m.dash.Charts().Renderer(ch.Key).(*BrailleChart); ok && c != nil {
		return c
	}
	return NewBrailleChart(ch)
}

// renderPlantView renders the scrollable profile.
func (m Model) renderPlantView() string {
	if !m.viewportReady {
		return renderProfile(m.ctrl.Profile(), m.ctrl.Thresholds())
	}
	return m.plantViewport.View()
}

// renderConfigView renders the active configuration, saved profiles and
// any open config form.
func (m Model) renderConfigView() string {
	lines := []string{
		ValueStyle.Render(m.ctrl.ActiveInfo()),
		LabelStyle.Render(fmt.Sprintf("Sampling interval: %ds", m.ctrl.SamplingSeconds())),
		RangesLine(m.ctrl.Thresholds()),
		"",
	}

	saved := m.ctrl.SavedConfigs()
	if len(saved) == 0 {
		lines = append(lines, MutedStyle.Render(dashboard.StatusNoSaved))
	} else {
		rows := make([][]string, 0, len(saved))
		for _, s := range saved {
			rows = append(rows, []string{s.PlantName, s.Location, s.PlantType, fmt.Sprintf("%ds", s.SamplingSeconds)})
		}
		lines = append(lines, ui.RenderSimpleTable([]ui.TableColumn{
			{Title: "Plant", Width: 18},
			{Title: "Location", Width: 16},
			{Title: "Type", Width: 20},
			{Title: "Sampling", Width: 9},
		}, rows))
	}

	if m.form != nil {
		lines = append(lines, "", OverlayStyle.Render(m.form.View()))
	}
	return strings.Join(lines, "\n")
}

// renderSetupOverlay centers the blocking setup form.
func (m Model) renderSetupOverlay() string {
	box := OverlayStyle.Render(
		TitleStyle.Render("Welcome to plantdash") + "\n" +
			LabelStyle.Render("Choose a plant to start monitoring.") + "\n\n" +
			m.form.View())

	height := m.height - headerHeight - footerHeight
	if m.width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderFooter renders key hints and the status line.
func (m Model) renderFooter() string {
	hints := make([]string, 0, 8)
	for _, b := range m.keys.FooterBindings(m.view) {
		hints = append(hints, footerHint(b))
	}
	line := strings.Join(hints, "  ")
	if m.status != "" {
		line += "  " + ValueStyle.Render(m.status)
	}
	return FooterStyle.Render(line)
}

func footerHint(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + strings.ToLower(strings.SplitN(h.Desc, " (", 2)[0])
}
