package tui

import (
	"testing"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/stretchr/testify/assert"
)

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "18–28 °C", formatRange(health.Temperature, api.Range{Min: 18, Max: 28}))
	assert.Equal(t, "40–70 %", formatRange(health.Humidity, api.Range{Min: 40, Max: 70}))
	assert.Equal(t, "20–80 %", formatRange(health.Light, health.LightBand))
}

func TestRenderCard_Placeholder(t *testing.T) {
	c := dashboard.Card{Metric: health.Temperature, Text: dashboard.Placeholder, Range: api.Range{Min: 18, Max: 28}, Classification: health.Idle}
	out := renderCard(c, 0, 30)
	assert.Contains(t, out, "--")
	assert.Contains(t, out, "Ideal 18–28 °C")
}

func TestRenderCard_LightHasBar(t *testing.T) {
	c := dashboard.Card{Metric: health.Light, Text: "50 %", Range: health.LightBand, Classification: health.ClassifyValue(50, health.LightBand)}
	out := renderCard(c, 50, 30)
	assert.Contains(t, out, "▰")
	assert.Contains(t, out, "▱")
	assert.Contains(t, out, "Ideal")
}

func TestRenderRecPanel(t *testing.T) {
	p := dashboard.RecPanel{
		Available: true,
		Alert:     true,
		Pill:      dashboard.StatusAttention,
		Summary:   "Attention: your plant needs care",
		Details:   "Temperature: too hot",
		Alerts:    []dashboard.AdviceLine{{Label: "Temperature", Message: "too hot"}},
		Tips:      []dashboard.AdviceLine{{Message: "Mist the leaves"}},
	}
	out := renderRecPanel(p, 80)
	assert.Contains(t, out, "Attention")
	assert.Contains(t, out, "! Temperature: too hot")
	assert.Contains(t, out, "• Mist the leaves")
}

func TestRenderProfile(t *testing.T) {
	assert.Contains(t, renderProfile(nil, health.Thresholds{}), "No selection")

	p := &api.PlantProfile{
		ID:          "basil",
		Description: "Kitchen herb",
		Tips:        []api.Advice{{Message: "Pinch the flowers"}},
		Image:       "basil.png",
	}
	th := health.ResolveThresholds(p)
	out := renderProfile(p, th)
	assert.Contains(t, out, "basil")
	assert.Contains(t, out, "Kitchen herb")
	assert.Contains(t, out, "• Pinch the flowers")
	assert.Contains(t, out, "Image: basil.png")
	assert.Contains(t, out, "Temperature 18–28 °C")
}
