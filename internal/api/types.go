// Package api talks to the plant backend: the sensor observations, the plant
// catalog, saved configurations and recommendations.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Sample is one timestamped sensor reading. Temperature and humidity are
// null when the sensor failed to read. Illuminance is a 0-100 percentage.
type Sample struct {
	Timestamp     time.Time `json:"timestamp"`
	Temperature   *float64  `json:"temperature"`
	Humidity      *float64  `json:"humidity"`
	Illuminance   *float64  `json:"illuminance"`
	PlantType     string    `json:"plantType,omitempty"`
	PlantConfigID string    `json:"plantConfigId,omitempty"`
}

// Range is an inclusive acceptable band for one metric.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the band, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges are the profile-specific bands. Light has none on purpose.
type Ranges struct {
	Temperature *Range `json:"temperature,omitempty"`
	Humidity    *Range `json:"humidity,omitempty"`
}

// Advice is a single recommendation line. Feature is "temperature",
// "humidity" or "light".
type Advice struct {
	Feature string `json:"feature,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// UnmarshalJSON accepts either an object or a bare string. Plant catalogs
// store care tips as plain strings.
func (a *Advice) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Advice{Message: s}
		return nil
	}
	type plain Advice
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*a = Advice(p)
	return nil
}

// PlantProfile is a species definition from the catalog.
type PlantProfile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Ranges      Ranges   `json:"ranges"`
	Tips        []Advice `json:"tips,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// Configuration is the active device/sampling setup. It doubles as the
// request body for POST /config and POST /plants/configs.
type Configuration struct {
	PlantConfigID   string        `json:"plantConfigId,omitempty"`
	PlantName       string        `json:"plantName,omitempty"`
	Location        string        `json:"location,omitempty"`
	PlantType       string        `json:"plantType,omitempty"`
	SamplingSeconds int           `json:"samplingSeconds,omitempty"`
	PlantProfile    *PlantProfile `json:"plantProfile,omitempty"`
}

// SavedConfig is a named configuration the user can reactivate.
type SavedConfig struct {
	ID              string        `json:"id"`
	PlantName       string        `json:"plantName"`
	Location        string        `json:"location"`
	PlantType       string        `json:"plantType"`
	SamplingSeconds int           `json:"samplingSeconds"`
	PlantProfile    *PlantProfile `json:"plantProfile,omitempty"`
}

// Label is how a saved entry is listed: "Basil (Kitchen)".
func (s SavedConfig) Label() string {
	return fmt.Sprintf("%s (%s)", s.PlantName, s.Location)
}

// Recommendation statuses. The backend answers "ok" where older builds said
// "healthy"; both mean nothing needs attention.
const (
	StatusAlert   = "alert"
	StatusHealthy = "healthy"
	StatusOK      = "ok"
)

// Recommendations is the backend's verdict on the latest sample.
type Recommendations struct {
	Status string   `json:"status"`
	Alerts []Advice `json:"alerts"`
	Tips   []Advice `json:"tips"`
}

// NeedsAttention reports whether the verdict is an alert.
func (r Recommendations) NeedsAttention() bool {
	return r.Status == StatusAlert
}

// RecommendationsResponse is the GET /recommendations/latest payload. Profile
// overrides the displayed plant profile when present.
type RecommendationsResponse struct {
	Timestamp       time.Time       `json:"timestamp"`
	Recommendations Recommendations `json:"recommendations"`
	Profile         *PlantProfile   `json:"profile,omitempty"`
}

// ObservationsResponse is the GET /observations/latest payload.
type ObservationsResponse struct {
	Items []Sample `json:"items"`
	Count int      `json:"count"`
}

// HealthStatus is the GET /health payload.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Query selects which samples a cycle reads.
type Query struct {
	Limit         int
	PlantConfigID string
	PlantType     string
}

// Values encodes the query. PlantConfigID wins over PlantType when both are set.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	switch {
	case q.PlantConfigID != "":
		v.Set("plantConfigId", q.PlantConfigID)
	case q.PlantType != "":
		v.Set("plantType", q.PlantType)
	}
	return v
}

// Float returns a pointer to v. Handy for building samples.
func Float(v float64) *float64 {
	return &v
}
