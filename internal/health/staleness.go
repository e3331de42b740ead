package health

import (
	"fmt"
	"math"
	"time"
)

// StalenessTolerance is the grace multiplier on the sampling interval. A
// sample older than samplingSeconds × 1.2 means the device stopped reporting.
const StalenessTolerance = 1.2

// DefaultSamplingSeconds applies when the configuration carries no usable interval.
const DefaultSamplingSeconds = 60

// Connectivity is the inferred device link state.
type Connectivity int

const (
	// Waiting means the poll returned no samples at all.
	Waiting Connectivity = iota
	Connected
	Disconnected
)

// String returns the connectivity name.
func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "waiting"
	}
}

// EffectiveSamplingSeconds substitutes the default for zero, negative and NaN intervals.
func EffectiveSamplingSeconds(samplingSeconds float64) float64 {
	if math.IsNaN(samplingSeconds) || math.IsInf(samplingSeconds, 0) || samplingSeconds <= 0 {
		return DefaultSamplingSeconds
	}
	return samplingSeconds
}

// StaleAfter is the age past which a sample counts as stale.
func StaleAfter(samplingSeconds float64) time.Duration {
	secs := EffectiveSamplingSeconds(samplingSeconds) * StalenessTolerance
	return time.Duration(math.Round(secs * float64(time.Second)))
}

// Age returns now - ts, floored at zero so clock skew never goes negative.
func Age(ts, now time.Time) time.Duration {
	age := now.Sub(ts)
	if age < 0 {
		return 0
	}
	return age
}

// DetectConnectivity decides the link state from the newest sample time.
// A nil timestamp means the poll had no samples.
func DetectConnectivity(latest *time.Time, samplingSeconds float64, now time.Time) Connectivity {
	if latest == nil {
		return Waiting
	}
	if Age(*latest, now) > StaleAfter(samplingSeconds) {
		return Disconnected
	}
	return Connected
}

// FormatAge renders a short relative age: "42s", "3 min", "2 h", "5 d".
// Each unit is rounded from the previous one.
func FormatAge(ts, now time.Time) string {
	seconds := math.Round(Age(ts, now).Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	minutes := math.Round(seconds / 60)
	if minutes < 60 {
		return fmt.Sprintf("%.0f min", minutes)
	}
	hours := math.Round(minutes / 60)
	if hours < 24 {
		return fmt.Sprintf("%.0f h", hours)
	}
	return fmt.Sprintf("%.0f d", math.Round(hours/24))
}
