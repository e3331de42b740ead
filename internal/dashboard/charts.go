package dashboard

import (
	"math"
	"sync"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/health"
)

// ChannelStyle is the fixed look of one chart series.
type ChannelStyle struct {
	Key    string
	Metric health.Metric
	Label  string
	Color  string
}

// Channel styles, in display order.
var (
	TemperatureChannel = ChannelStyle{Key: "temp", Metric: health.Temperature, Label: "Temperature (°C)", Color: "#2563eb"}
	HumidityChannel    = ChannelStyle{Key: "hum", Metric: health.Humidity, Label: "Humidity (%)", Color: "#0ea5e9"}
	LightChannel       = ChannelStyle{Key: "lux", Metric: health.Light, Label: "Light (%)", Color: "#f59e0b"}
)

// Channels lists every chart channel in display order.
var Channels = []ChannelStyle{TemperatureChannel, HumidityChannel, LightChannel}

// LabelLayout formats sample times on the chart axis.
const LabelLayout = "15:04"

// ChartRenderer draws one series. Replace swaps the whole series in place
// and Redraw asks for a repaint. A renderer is never recreated.
type ChartRenderer interface {
	Replace(labels []string, data []float64)
	Redraw()
}

// RendererFactory builds the renderer for a channel on first use.
type RendererFactory func(style ChannelStyle) ChartRenderer

// ChartSet owns one renderer per channel and feeds them the sample window.
type ChartSet struct {
	mu        sync.Mutex
	factory   RendererFactory
	renderers map[string]ChartRenderer
	loc       *time.Location
}

// NewChartSet creates a chart set. A nil factory stores series in memory
// (see SeriesBuffer), which is what the headless commands use.
func NewChartSet(factory RendererFactory) *ChartSet {
	if factory == nil {
		factory = func(ChannelStyle) ChartRenderer { return &SeriesBuffer{} }
	}
	return &ChartSet{
		factory:   factory,
		renderers: make(map[string]ChartRenderer),
		loc:       time.Local,
	}
}

// SetLocation changes the zone axis labels are rendered in.
func (c *ChartSet) SetLocation(loc *time.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loc != nil {
		c.loc = loc
	}
}

// Update replaces every channel with the full sample window. An empty
// window clears the series.
func (c *ChartSet) Update(samples []api.Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	labels := Labels(samples, c.loc)
	for _, style := range Channels {
		r, ok := c.renderers[style.Key]
		if !ok {
			r = c.factory(style)
			c.renderers[style.Key] = r
		}
		r.Replace(labels, Series(samples, style.Metric))
		r.Redraw()
	}
}

// Renderer returns the renderer for a channel key, or nil before the first Update.
func (c *ChartSet) Renderer(key string) ChartRenderer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderers[key]
}

// Labels formats each sample time as "15:04" in loc.
func Labels(samples []api.Sample, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	out := make([]string, len(samples))
	for i, s := range samples {
		if s.Timestamp.IsZero() {
			out[i] = "--"
			continue
		}
		out[i] = s.Timestamp.In(loc).Format(LabelLayout)
	}
	return out
}

// Series extracts one metric. Missing readings become NaN so the series
// always lines up with the labels.
func Series(samples []api.Sample, m health.Metric) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		v := reading(s, m)
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

func reading(s api.Sample, m health.Metric) *float64 {
	switch m {
	case health.Temperature:
		return s.Temperature
	case health.Humidity:
		return s.Humidity
	default:
		return s.Illuminance
	}
}

// SeriesBuffer is a renderer that only remembers the last series.
type SeriesBuffer struct {
	mu      sync.Mutex
	labels  []string
	data    []float64
	redraws int
}

func (b *SeriesBuffer) Replace(labels []string, data []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labels = append(b.labels[:0], labels...)
	b.data = append(b.data[:0], data...)
}

func (b *SeriesBuffer) Redraw() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.redraws++
}

// Series returns copies of the current labels and data.
func (b *SeriesBuffer) Series() ([]string, []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	labels := make([]string, len(b.labels))
	copy(labels, b.labels)
	data := make([]float64, len(b.data))
	copy(data, b.data)
	return labels, data
}

// Redraws returns how many times Redraw was called.
func (b *SeriesBuffer) Redraws() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.redraws
}
