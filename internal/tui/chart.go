package tui

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
const brailleBase = '\u2800'

// brailleDots maps [row][col] to the bit offset inside the pattern.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// BrailleChart is the terminal renderer for one chart channel. It keeps
// the latest series and draws it on demand.
type BrailleChart struct {
	mu      sync.Mutex
	style   dashboard.ChannelStyle
	labels  []string
	data    []float64
	version int
}

// NewBrailleChart creates an empty chart for a channel.
func NewBrailleChart(style dashboard.ChannelStyle) *BrailleChart {
	return &BrailleChart{style: style}
}

// RendererFactory builds braille charts for a dashboard.ChartSet.
func RendererFactory(style dashboard.ChannelStyle) dashboard.ChartRenderer {
	return NewBrailleChart(style)
}

// Replace swaps in a new series.
func (c *BrailleChart) Replace(labels []string, data []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = append(c.labels[:0], labels...)
	c.data = append(c.data[:0], data...)
}

// Redraw bumps the version so the next View reflects the new series.
func (c *BrailleChart) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
}

// Version counts redraws.
func (c *BrailleChart) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Len returns the number of points in the series.
func (c *BrailleChart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// View draws the chart inside a section box of the given outer width.
func (c *BrailleChart) View(width, height int) string {
	c.mu.Lock()
	labels := append([]string(nil), c.labels...)
	data := append([]float64(nil), c.data...)
	c.mu.Unlock()

	color := lipgloss.Color(c.style.Color)
	inner := width - 4
	if inner < 4 {
		inner = 4
	}

	stats := Summarize(data)
	value := "--"
	if stats.Points > 0 {
		value = fmt.Sprintf("%.1f", stats.Latest)
	}

	lines := []string{SectionHeader(c.style.Label, value, width, color)}

	if len(data) == 0 {
		lines = append(lines, SectionContentLine(MutedStyle.Render("No data yet."), width))
		for i := 1; i < height; i++ {
			lines = append(lines, SectionContentLine("", width))
		}
	} else {
		lo, hi := chartBounds(c.style.Metric, stats)
		graph := RenderBraille(data, inner, height, lo, hi)
		for _, row := range strings.Split(graph, "\n") {
			lines = append(lines, SectionContentLine(lipgloss.NewStyle().Foreground(color).Render(row), width))
		}
		lines = append(lines, SectionContentLine(axisLine(labels, inner), width))
		lines = append(lines, SectionContentLine(MutedStyle.Render(stats.Legend()), width))
	}

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// chartBounds picks the vertical scale. Light is a percentage and always
// spans 0-100; the other channels follow the data with a little headroom.
func chartBounds(m health.Metric, s Stats) (float64, float64) {
	if m == health.Light || s.Points == 0 {
		return 0, 100
	}
	pad := (s.Max - s.Min) * 0.1
	if pad == 0 {
		pad = 1
	}
	return s.Min - pad, s.Max + pad
}

// Stats summarizes the finite points of a series.
type Stats struct {
	Min, Max, Latest float64
	Points           int
}

// Summarize skips NaN gaps.
func Summarize(data []float64) Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		s.Points++
		s.Latest = v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.Points == 0 {
		s.Min, s.Max = 0, 0
	}
	return s
}

// Legend renders "min 18.2  max 24.1  latest 22.0".
func (s Stats) Legend() string {
	if s.Points == 0 {
		return "min --  max --  latest --"
	}
	return fmt.Sprintf("min %.1f  max %.1f  latest %.1f", s.Min, s.Max, s.Latest)
}

// axisLine puts the first label on the left and the last on the right.
func axisLine(labels []string, width int) string {
	if len(labels) == 0 {
		return ""
	}
	first, last := labels[0], labels[len(labels)-1]
	if len(labels) == 1 {
		return MutedStyle.Render(first)
	}
	gap := width - lipgloss.Width(first) - lipgloss.Width(last)
	if gap < 1 {
		return MutedStyle.Render(last)
	}
	return MutedStyle.Render(first + strings.Repeat(" ", gap) + last)
}

// RenderBraille plots data into a width x height braille grid scaled to
// [lo, hi]. Each character holds two points; NaN points leave a gap. When
// there are more points than fit, the newest ones are kept.
func RenderBraille(data []float64, width, height int, lo, hi float64) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}

	capacity := width * 2
	if len(data) > capacity {
		data = data[len(data)-capacity:]
	}
	// Right-align short series so the newest point is at the edge.
	offset := capacity - len(data)
	totalDots := height * 4

	for i, v := range data {
		if math.IsNaN(v) {
			continue
		}
		col := (i + offset) / 2
		sub := (i + offset) % 2

		norm := 0.5
		if hi > lo {
			norm = (v - lo) / (hi - lo)
		}
		dots := int(math.Round(norm * float64(totalDots)))
		if dots < 1 {
			dots = 1
		}
		if dots > totalDots {
			dots = totalDots
		}

		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			subRow := 3 - d%4
			grid[row][col] |= rune(1 << brailleDots[subRow][sub])
		}
	}

	rows := make([]string, height)
	for i, r := range grid {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}
