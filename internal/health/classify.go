package health

import (
	"math"

	"github.com/rileyhilliard/plantdash/internal/api"
)

// State is the health of one reading.
type State int

const (
	StateIdle State = iota
	StateLow
	StateIdeal
	StateHigh
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLow:
		return "low"
	case StateIdeal:
		return "ideal"
	case StateHigh:
		return "high"
	default:
		return "idle"
	}
}

// Classification is a derived verdict for one reading. Never stored.
type Classification struct {
	State State
	Label string
}

// Idle is the classification for a missing reading.
var Idle = Classification{State: StateIdle, Label: "--"}

// Classify maps a nullable reading onto its band. Missing and NaN readings
// are idle. The bounds themselves count as ideal.
func Classify(v *float64, r api.Range) Classification {
	if v == nil {
		return Idle
	}
	return ClassifyValue(*v, r)
}

// ClassifyValue is Classify for a reading that is known to be present.
func ClassifyValue(v float64, r api.Range) Classification {
	switch {
	case math.IsNaN(v):
		return Idle
	case r.Contains(v):
		return Classification{State: StateIdeal, Label: "Ideal"}
	case v < r.Min:
		return Classification{State: StateLow, Label: "Low"}
	default:
		return Classification{State: StateHigh, Label: "High"}
	}
}
