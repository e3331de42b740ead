package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/errors"
)

// stubBackend answers from fields and records what it was asked.
type stubBackend struct {
	mu sync.Mutex

	plants  []api.PlantProfile
	saved   []api.SavedConfig
	config  *api.Configuration
	samples []api.Sample
	recs    *api.RecommendationsResponse

	samplesErr error
	recsErr    error
	saveErr    error
	createErr  error

	// block, when set, holds LatestObservations until closed.
	block chan struct{}

	queries    []api.Query
	savedBody  []api.Configuration
	createBody []api.Configuration
	activated  []string
}

func newStub() *stubBackend {
	return &stubBackend{
		plants: []api.PlantProfile{
			{ID: "monstera-deliciosa", Name: "Monstera", Ranges: api.Ranges{
				Temperature: &api.Range{Min: 18, Max: 28},
				Humidity:    &api.Range{Min: 50, Max: 75},
			}},
			{ID: "cactus", Name: "Cactus", Ranges: api.Ranges{
				Temperature: &api.Range{Min: 10, Max: 35},
				Humidity:    &api.Range{Min: 10, Max: 30},
			}},
		},
	}
}

func (s *stubBackend) ListPlants(ctx context.Context) ([]api.PlantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plants, nil
}

func (s *stubBackend) ListSavedConfigs(ctx context.Context) ([]api.SavedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, nil
}

func (s *stubBackend) CreateSavedConfig(ctx context.Context, cfg api.Configuration) (*api.SavedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createBody = append(s.createBody, cfg)
	if s.createErr != nil {
		return nil, s.createErr
	}
	sc := api.SavedConfig{
		ID:              "cfg-" + cfg.PlantName,
		PlantName:       cfg.PlantName,
		Location:        cfg.Location,
		PlantType:       cfg.PlantType,
		SamplingSeconds: cfg.SamplingSeconds,
	}
	s.saved = append(s.saved, sc)
	return &sc, nil
}

func (s *stubBackend) GetConfig(ctx context.Context) (*api.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return nil, errors.New(errors.ErrBackend, "Not Found", "")
	}
	cp := *s.config
	return &cp, nil
}

func (s *stubBackend) SaveConfig(ctx context.Context, cfg api.Configuration) (*api.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedBody = append(s.savedBody, cfg)
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	cp := cfg
	s.config = &cp
	out := cfg
	return &out, nil
}

func (s *stubBackend) ActivateConfig(ctx context.Context, id string) (*api.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activated = append(s.activated, id)
	for _, sc := range s.saved {
		if sc.ID == id {
			cfg := api.Configuration{
				PlantConfigID:   sc.ID,
				PlantName:       sc.PlantName,
				Location:        sc.Location,
				PlantType:       sc.PlantType,
				SamplingSeconds: sc.SamplingSeconds,
			}
			s.config = &cfg
			out := cfg
			return &out, nil
		}
	}
	return nil, errors.New(errors.ErrBackend, "Config not found", "")
}

func (s *stubBackend) LatestObservations(ctx context.Context, q api.Query) ([]api.Sample, error) {
	s.mu.Lock()
	block := s.block
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samplesErr != nil {
		return nil, s.samplesErr
	}
	return append([]api.Sample(nil), s.samples...), nil
}

func (s *stubBackend) LatestRecommendations(ctx context.Context, q api.Query) (*api.RecommendationsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recsErr != nil {
		return nil, s.recsErr
	}
	return s.recs, nil
}

func (s *stubBackend) lastQuery() api.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return api.Query{}
	}
	return s.queries[len(s.queries)-1]
}

func (s *stubBackend) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sample(age time.Duration, temp, hum, light float64) api.Sample {
	return api.Sample{
		Timestamp:   testNow.Add(-age),
		Temperature: api.Float(temp),
		Humidity:    api.Float(hum),
		Illuminance: api.Float(light),
	}
}

func healthyRecs() *api.RecommendationsResponse {
	return &api.RecommendationsResponse{
		Timestamp: testNow,
		Recommendations: api.Recommendations{
			Status: api.StatusOK,
			Tips:   []api.Advice{{Feature: "humidity", Status: "ok", Message: "Humidity is stable"}},
		},
	}
}

func alertRecs() *api.RecommendationsResponse {
	return &api.RecommendationsResponse{
		Timestamp: testNow,
		Recommendations: api.Recommendations{
			Status: api.StatusAlert,
			Alerts: []api.Advice{{Feature: "temperature", Status: "high", Message: "Move to a cooler spot"}},
			Tips:   []api.Advice{{Feature: "light", Status: "ok", Message: "Light is adequate"}},
		},
	}
}
