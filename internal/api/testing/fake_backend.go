// Package testing provides an in-memory plant backend for tests and local
// development. It speaks the same JSON API as the real service.
package testing

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rileyhilliard/plantdash/internal/api"
)

// DefaultPlantType is used when a request names no plant type.
const DefaultPlantType = "monstera-deliciosa"

// maxObservations bounds the in-memory history like the real backend does.
const maxObservations = 200

// lightBand is the fixed illuminance band, in percent.
var lightBand = api.Range{Min: 20, Max: 80}

// DefaultCatalog returns the built-in plant catalog.
func DefaultCatalog() []api.PlantProfile {
	return []api.PlantProfile{
		{
			ID:          "monstera-deliciosa",
			Name:        "Monstera Deliciosa",
			Description: "Tropical climber with split leaves. Likes warmth and bright indirect light.",
			Ranges: api.Ranges{
				Temperature: &api.Range{Min: 18, Max: 28},
				Humidity:    &api.Range{Min: 50, Max: 75},
			},
			Tips: []api.Advice{
				{Message: "Water when the top 5 cm of soil are dry."},
				{Message: "Wipe the leaves monthly so they can breathe."},
			},
			Image: "https://example.com/plants/monstera.jpg",
		},
		{
			ID:          "ficus-lyrata",
			Name:        "Fiddle Leaf Fig",
			Description: "Dislikes drafts and being moved around.",
			Ranges: api.Ranges{
				Temperature: &api.Range{Min: 16, Max: 27},
				Humidity:    &api.Range{Min: 40, Max: 60},
			},
			Tips: []api.Advice{
				{Message: "Rotate a quarter turn every week for even growth."},
			},
		},
		{
			ID:          "sansevieria",
			Name:        "Snake Plant",
			Description: "Tolerates neglect and low light.",
			Ranges: api.Ranges{
				Temperature: &api.Range{Min: 15, Max: 30},
				Humidity:    &api.Range{Min: 30, Max: 50},
			},
			Tips: []api.Advice{
				{Message: "Let the soil dry out completely between waterings."},
			},
		},
		{
			// No ranges: the dashboard falls back to its defaults.
			ID:          "mystery-succulent",
			Name:        "Mystery Succulent",
			Description: "Unlabelled nursery find.",
		},
	}
}

// FakeBackend is an in-memory implementation of the plant API.
type FakeBackend struct {
	mu           sync.Mutex
	plants       []api.PlantProfile
	saved        []api.SavedConfig
	config       api.Configuration
	observations []api.Sample

	// Now stamps observations posted without a timestamp.
	Now func() time.Time

	// Failure injection. When set, the matching endpoint answers 500.
	FailObservations    bool
	FailRecommendations bool

	// Tracking for assertions
	ObservationCalls     int
	RecommendationCalls  int
	LastObservationQuery string
}

// NewFakeBackend creates a backend with the default catalog and the
// out-of-the-box configuration (SmartPlant in the Living Room, 60 s).
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		plants: DefaultCatalog(),
		config: api.Configuration{
			PlantName:       "SmartPlant",
			Location:        "Living Room",
			PlantType:       DefaultPlantType,
			SamplingSeconds: 60,
		},
		Now: time.Now,
	}
}

// Handler returns the router. Routes live under /api, matching the base URL
// the dashboard is configured with.
func (f *FakeBackend) Handler() http.Handler {
	r := mux.NewRouter()
	s := r.PathPrefix("/api").Subrouter()

	s.HandleFunc("/health", f.handleHealth).Methods(http.MethodGet)
	s.HandleFunc("/plants", f.handleListPlants).Methods(http.MethodGet)
	s.HandleFunc("/plants/configs", f.handleListSaved).Methods(http.MethodGet)
	s.HandleFunc("/plants/configs", f.handleCreateSaved).Methods(http.MethodPost)
	s.HandleFunc("/config", f.handleGetConfig).Methods(http.MethodGet)
	s.HandleFunc("/config", f.handleSaveConfig).Methods(http.MethodPost)
	s.HandleFunc("/config/activate", f.handleActivate).Methods(http.MethodPost)
	s.HandleFunc("/observations", f.handleIngest).Methods(http.MethodPost)
	s.HandleFunc("/observations/latest", f.handleLatestObservations).Methods(http.MethodGet)
	s.HandleFunc("/recommendations/latest", f.handleLatestRecommendations).Methods(http.MethodGet)

	return r
}

// AddObservation appends a sample. Missing plant type and config id are
// taken from the active configuration, as the device does not know them.
func (f *FakeBackend) AddObservation(s api.Sample) api.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(s)
}

func (f *FakeBackend) addLocked(s api.Sample) api.Sample {
	if s.Timestamp.IsZero() {
		s.Timestamp = f.Now().UTC()
	}
	if s.PlantType == "" {
		s.PlantType = f.config.PlantType
	}
	if s.PlantConfigID == "" {
		s.PlantConfigID = f.config.PlantConfigID
	}
	f.observations = append(f.observations, s)
	if len(f.observations) > maxObservations {
		f.observations = f.observations[len(f.observations)-maxObservations:]
	}
	return s
}

// ActiveConfig returns a copy of the active configuration.
func (f *FakeBackend) ActiveConfig() api.Configuration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

// SetFailures toggles failure injection under the lock.
func (f *FakeBackend) SetFailures(observations, recommendations bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailObservations = observations
	f.FailRecommendations = recommendations
}

// Calls returns the observation and recommendation request counts.
func (f *FakeBackend) Calls() (observations, recommendations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ObservationCalls, f.RecommendationCalls
}

// LastQuery returns the raw query of the latest observations request.
func (f *FakeBackend) LastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LastObservationQuery
}

func (f *FakeBackend) profile(plantType string) *api.PlantProfile {
	for i := range f.plants {
		if f.plants[i].ID == plantType {
			p := f.plants[i]
			return &p
		}
	}
	return nil
}

func (f *FakeBackend) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthStatus{Status: "ok", Service: "plant-backend-fake"})
}

func (f *FakeBackend) handleListPlants(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.plants)
}

func (f *FakeBackend) handleListSaved(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.SavedConfig, len(f.saved))
	copy(out, f.saved)
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) handleCreateSaved(w http.ResponseWriter, r *http.Request) {
	var body api.Configuration
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	plantType := body.PlantType
	if plantType == "" {
		plantType = DefaultPlantType
	}
	profile := f.profile(plantType)
	if profile == nil {
		writeError(w, http.StatusBadRequest, "Invalid plant type")
		return
	}

	cfg := api.SavedConfig{
		ID:              shortID(),
		PlantName:       orDefault(body.PlantName, "SmartPlant"),
		Location:        orDefault(body.Location, "Living Room"),
		PlantType:       plantType,
		SamplingSeconds: body.SamplingSeconds,
	}
	if cfg.SamplingSeconds == 0 {
		cfg.SamplingSeconds = 60
	}
	f.saved = append(f.saved, cfg)

	cfg.PlantProfile = profile
	writeJSON(w, http.StatusCreated, cfg)
}

func (f *FakeBackend) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg := f.config
	cfg.PlantProfile = f.profile(cfg.PlantType)
	writeJSON(w, http.StatusOK, cfg)
}

func (f *FakeBackend) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var body api.Configuration
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	plantType := orDefault(body.PlantType, orDefault(f.config.PlantType, DefaultPlantType))
	profile := f.profile(plantType)
	if profile == nil {
		writeError(w, http.StatusBadRequest, "Invalid plant type")
		return
	}

	next := api.Configuration{
		PlantName:       orDefault(body.PlantName, "SmartPlant"),
		Location:        orDefault(body.Location, "Living Room"),
		PlantType:       plantType,
		SamplingSeconds: body.SamplingSeconds,
		PlantConfigID:   orDefault(body.PlantConfigID, f.config.PlantConfigID),
	}
	if next.SamplingSeconds == 0 {
		next.SamplingSeconds = 60
	}
	f.config = next

	next.PlantProfile = profile
	writeJSON(w, http.StatusCreated, next)
}

func (f *FakeBackend) handleActivate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlantConfigID string `json:"plantConfigId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.PlantConfigID == "" {
		writeError(w, http.StatusBadRequest, "plantConfigId required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.saved {
		if s.ID != body.PlantConfigID {
			continue
		}
		f.config = api.Configuration{
			PlantConfigID:   s.ID,
			PlantName:       s.PlantName,
			Location:        s.Location,
			PlantType:       s.PlantType,
			SamplingSeconds: s.SamplingSeconds,
		}
		out := f.config
		out.PlantProfile = f.profile(s.PlantType)
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeError(w, http.StatusNotFound, "Config not found")
}

func (f *FakeBackend) handleIngest(w http.ResponseWriter, r *http.Request) {
	var s api.Sample
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "JSON required")
		return
	}
	writeJSON(w, http.StatusCreated, f.AddObservation(s))
}

func (f *FakeBackend) handleLatestObservations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ObservationCalls++
	f.LastObservationQuery = r.URL.RawQuery
	if f.FailObservations {
		writeError(w, http.StatusInternalServerError, "observation store unavailable")
		return
	}

	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	items := f.filterLocked(r, limit)
	writeJSON(w, http.StatusOK, api.ObservationsResponse{Items: items, Count: len(items)})
}

func (f *FakeBackend) handleLatestRecommendations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RecommendationCalls++
	if f.FailRecommendations {
		writeError(w, http.StatusInternalServerError, "recommendation engine unavailable")
		return
	}

	items := f.filterLocked(r, 1)
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, "No observations")
		return
	}
	latest := items[len(items)-1]

	plantType := orDefault(latest.PlantType, orDefault(r.URL.Query().Get("plantType"), f.config.PlantType))
	profile := f.profile(plantType)
	writeJSON(w, http.StatusOK, api.RecommendationsResponse{
		Timestamp:       latest.Timestamp,
		Recommendations: BuildRecommendations(latest, profile),
		Profile:         profile,
	})
}

// filterLocked applies the plantConfigId/plantType filters, then keeps the
// newest limit samples in oldest-to-newest order.
func (f *FakeBackend) filterLocked(r *http.Request, limit int) []api.Sample {
	q := r.URL.Query()
	cfgID := q.Get("plantConfigId")
	plantType := q.Get("plantType")

	out := make([]api.Sample, 0, len(f.observations))
	for _, s := range f.observations {
		if cfgID != "" && s.PlantConfigID != cfgID {
			continue
		}
		if plantType != "" && s.PlantType != plantType {
			continue
		}
		out = append(out, s)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

type verdictText struct{ ok, low, high string }

var verdicts = map[string]verdictText{
	"temperature": {"Temperature is ideal", "Move to a warmer spot", "Move to a cooler spot"},
	"humidity":    {"Humidity is stable", "Water the plant", "Reduce watering or improve ventilation"},
	"light":       {"Light is adequate", "Move closer to a window", "Filter the light or move the plant"},
}

// BuildRecommendations evaluates a sample the way the backend does: every
// metric out of range becomes an alert, everything else a tip.
func BuildRecommendations(s api.Sample, profile *api.PlantProfile) api.Recommendations {
	tempRange := api.Range{Min: 18, Max: 28}
	humRange := api.Range{Min: 40, Max: 70}
	if profile != nil && profile.Ranges.Temperature != nil {
		tempRange = *profile.Ranges.Temperature
	}
	if profile != nil && profile.Ranges.Humidity != nil {
		humRange = *profile.Ranges.Humidity
	}

	recs := api.Recommendations{Status: api.StatusOK, Alerts: []api.Advice{}, Tips: []api.Advice{}}
	evaluate := func(feature string, v *float64, rng api.Range) {
		if v == nil {
			return
		}
		text := verdicts[feature]
		adv := api.Advice{Feature: feature, Status: "ok", Message: text.ok}
		switch {
		case *v < rng.Min:
			adv.Status, adv.Message = "low", text.low
		case *v > rng.Max:
			adv.Status, adv.Message = "high", text.high
		}
		if adv.Status == "ok" {
			recs.Tips = append(recs.Tips, adv)
		} else {
			recs.Alerts = append(recs.Alerts, adv)
		}
	}
	evaluate("temperature", s.Temperature, tempRange)
	evaluate("humidity", s.Humidity, humRange)
	evaluate("light", s.Illuminance, lightBand)

	if len(recs.Alerts) > 0 {
		recs.Status = api.StatusAlert
	}
	return recs
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
