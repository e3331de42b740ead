// Package health classifies sensor readings against plant thresholds and
// decides whether the device is still reporting.
package health

import "github.com/rileyhilliard/plantdash/internal/api"

// Metric names one of the three sensor channels.
type Metric string

const (
	Temperature Metric = "temperature"
	Humidity    Metric = "humidity"
	Light       Metric = "light"
)

// Label is the human-readable name used in cards and recommendation lists.
func (m Metric) Label() string {
	switch m {
	case Temperature:
		return "Temperature"
	case Humidity:
		return "Humidity"
	case Light:
		return "Light (%)"
	default:
		return string(m)
	}
}

// FeatureLabel maps a recommendation feature key to its label. Unknown keys
// are returned unchanged.
func FeatureLabel(feature string) string {
	return Metric(feature).Label()
}

// LightBand is the illuminance band for every plant. Light is a normalized
// percentage that means the same thing for every species, so profiles
// never override it.
var LightBand = api.Range{Min: 20, Max: 80}

// Thresholds holds the resolved band for each metric.
type Thresholds struct {
	Temperature api.Range
	Humidity    api.Range
	Illuminance api.Range
}

// For returns the band for m.
func (t Thresholds) For(m Metric) api.Range {
	switch m {
	case Temperature:
		return t.Temperature
	case Humidity:
		return t.Humidity
	default:
		return t.Illuminance
	}
}

// Fallbacks are the ranges used when the profile does not define one.
type Fallbacks struct {
	Temperature api.Range
	Humidity    api.Range
}

// DefaultFallbacks returns 18-28 °C and 40-70 % humidity.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		Temperature: api.Range{Min: 18, Max: 28},
		Humidity:    api.Range{Min: 40, Max: 70},
	}
}

// Resolver derives thresholds from the active profile.
type Resolver struct {
	Fallbacks Fallbacks
}

// NewResolver returns a resolver using the default fallbacks.
func NewResolver() *Resolver {
	return &Resolver{Fallbacks: DefaultFallbacks()}
}

// Resolve returns the bands for profile, which may be nil.
func (r *Resolver) Resolve(profile *api.PlantProfile) Thresholds {
	t := Thresholds{
		Temperature: r.Fallbacks.Temperature,
		Humidity:    r.Fallbacks.Humidity,
		Illuminance: LightBand,
	}
	if profile == nil {
		return t
	}
	if profile.Ranges.Temperature != nil {
		t.Temperature = *profile.Ranges.Temperature
	}
	if profile.Ranges.Humidity != nil {
		t.Humidity = *profile.Ranges.Humidity
	}
	return t
}

// ResolveThresholds resolves with the default fallbacks.
func ResolveThresholds(profile *api.PlantProfile) Thresholds {
	return NewResolver().Resolve(profile)
}
