package testing

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*FakeBackend, *api.Client) {
	t.Helper()
	fb := NewFakeBackend()
	srv := httptest.NewServer(fb.Handler())
	t.Cleanup(srv.Close)
	return fb, api.NewClient(srv.URL + "/api")
}

func TestFakeBackend_Health(t *testing.T) {
	_, c := newServer(t)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestFakeBackend_CatalogDecodesStringTips(t *testing.T) {
	_, c := newServer(t)
	plants, err := c.ListPlants(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, plants)

	assert.Equal(t, "monstera-deliciosa", plants[0].ID)
	require.NotNil(t, plants[0].Ranges.Temperature)
	assert.Equal(t, api.Range{Min: 18, Max: 28}, *plants[0].Ranges.Temperature)
	require.NotEmpty(t, plants[0].Tips)
	assert.NotEmpty(t, plants[0].Tips[0].Message)
}

func TestFakeBackend_DefaultConfig(t *testing.T) {
	_, c := newServer(t)
	cfg, err := c.GetConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "SmartPlant", cfg.PlantName)
	assert.Equal(t, "Living Room", cfg.Location)
	assert.Equal(t, 60, cfg.SamplingSeconds)
	assert.Equal(t, DefaultPlantType, cfg.PlantType)
	require.NotNil(t, cfg.PlantProfile)
	assert.Equal(t, "Monstera Deliciosa", cfg.PlantProfile.Name)
}

func TestFakeBackend_SaveConfigRoundTrip(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	saved, err := c.SaveConfig(ctx, api.Configuration{
		PlantName: "Office Monstera", Location: "Desk", PlantType: "monstera-deliciosa", SamplingSeconds: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, saved.SamplingSeconds)

	got, err := c.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Office Monstera", got.PlantName)
	assert.Equal(t, "Desk", got.Location)
	assert.Equal(t, 30, got.SamplingSeconds)
	assert.Equal(t, "monstera-deliciosa", got.PlantType)
}

func TestFakeBackend_SaveConfigKeepsConfigID(t *testing.T) {
	fb, c := newServer(t)
	ctx := context.Background()

	entry, err := c.CreateSavedConfig(ctx, api.Configuration{PlantName: "Fig", Location: "Hall", PlantType: "ficus-lyrata"})
	require.NoError(t, err)
	_, err = c.ActivateConfig(ctx, entry.ID)
	require.NoError(t, err)

	_, err = c.SaveConfig(ctx, api.Configuration{PlantName: "Fig", Location: "Hall", PlantType: "ficus-lyrata", SamplingSeconds: 90})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, fb.ActiveConfig().PlantConfigID)
}

func TestFakeBackend_InvalidPlantType(t *testing.T) {
	_, c := newServer(t)
	_, err := c.SaveConfig(context.Background(), api.Configuration{PlantType: "cactus-imaginarius"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBackend))
	assert.Contains(t, err.Error(), "Invalid plant type")
}

func TestFakeBackend_SavedConfigs(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	entry, err := c.CreateSavedConfig(ctx, api.Configuration{
		PlantName: "Basil", Location: "Kitchen", PlantType: "sansevieria", SamplingSeconds: 45,
	})
	require.NoError(t, err)
	assert.Len(t, entry.ID, 12)
	require.NotNil(t, entry.PlantProfile)

	list, err := c.ListSavedConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Basil (Kitchen)", list[0].Label())
	assert.Nil(t, list[0].PlantProfile, "list entries carry no profile")

	active, err := c.ActivateConfig(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, active.PlantConfigID)
	assert.Equal(t, 45, active.SamplingSeconds)
	require.NotNil(t, active.PlantProfile)
	assert.Equal(t, "sansevieria", active.PlantProfile.ID)
}

func TestFakeBackend_ActivateErrors(t *testing.T) {
	_, c := newServer(t)
	ctx := context.Background()

	_, err := c.ActivateConfig(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plantConfigId required")

	_, err = c.ActivateConfig(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config not found")
}

func TestFakeBackend_ObservationFilters(t *testing.T) {
	fb, c := newServer(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 30; i++ {
		fb.AddObservation(api.Sample{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Temperature: api.Float(float64(20 + i%3)),
			Illuminance: api.Float(50),
		})
	}
	fb.AddObservation(api.Sample{Timestamp: base.Add(time.Hour), PlantType: "ficus-lyrata", PlantConfigID: "fig-1"})

	items, err := c.LatestObservations(ctx, api.Query{Limit: 24, PlantType: "monstera-deliciosa"})
	require.NoError(t, err)
	require.Len(t, items, 24)
	assert.True(t, items[0].Timestamp.Before(items[23].Timestamp), "oldest first")
	assert.Equal(t, base.Add(29*time.Minute), items[23].Timestamp.UTC())

	items, err = c.LatestObservations(ctx, api.Query{Limit: 24, PlantConfigID: "fig-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ficus-lyrata", items[0].PlantType)
	assert.Contains(t, fb.LastQuery(), "plantConfigId=fig-1")
}

func TestFakeBackend_HistoryBounded(t *testing.T) {
	fb := NewFakeBackend()
	for i := 0; i < maxObservations+10; i++ {
		fb.AddObservation(api.Sample{})
	}
	assert.Len(t, fb.observations, maxObservations)
}

func TestFakeBackend_Recommendations(t *testing.T) {
	fb, c := newServer(t)
	ctx := context.Background()

	_, err := c.LatestRecommendations(ctx, api.Query{Limit: 24})
	require.Error(t, err, "no observations yet")
	assert.Contains(t, err.Error(), "No observations")

	fb.AddObservation(api.Sample{Temperature: api.Float(35), Humidity: api.Float(60), Illuminance: api.Float(10)})

	resp, err := c.LatestRecommendations(ctx, api.Query{Limit: 24, PlantType: "monstera-deliciosa"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusAlert, resp.Recommendations.Status)
	require.Len(t, resp.Recommendations.Alerts, 2)
	assert.Equal(t, "temperature", resp.Recommendations.Alerts[0].Feature)
	assert.Equal(t, "high", resp.Recommendations.Alerts[0].Status)
	assert.Equal(t, "light", resp.Recommendations.Alerts[1].Feature)
	assert.Equal(t, "low", resp.Recommendations.Alerts[1].Status)
	require.Len(t, resp.Recommendations.Tips, 1)
	assert.Equal(t, "humidity", resp.Recommendations.Tips[0].Feature)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "monstera-deliciosa", resp.Profile.ID)
}

func TestFakeBackend_FailureInjection(t *testing.T) {
	fb, c := newServer(t)
	ctx := context.Background()
	fb.AddObservation(api.Sample{Temperature: api.Float(22)})
	fb.SetFailures(true, true)

	_, err := c.LatestObservations(ctx, api.Query{Limit: 24})
	require.Error(t, err)
	_, err = c.LatestRecommendations(ctx, api.Query{Limit: 24})
	require.Error(t, err)

	obs, recs := fb.Calls()
	assert.Equal(t, 1, obs)
	assert.Equal(t, 1, recs)
}

func TestBuildRecommendations_DefaultsWithoutProfile(t *testing.T) {
	recs := BuildRecommendations(api.Sample{
		Temperature: api.Float(28),
		Humidity:    api.Float(39),
	}, nil)

	assert.Equal(t, api.StatusAlert, recs.Status)
	require.Len(t, recs.Alerts, 1)
	assert.Equal(t, "humidity", recs.Alerts[0].Feature)
	require.Len(t, recs.Tips, 1)
	assert.Equal(t, "temperature", recs.Tips[0].Feature, "bounds are inside the band")
}

func TestBuildRecommendations_AllGood(t *testing.T) {
	recs := BuildRecommendations(api.Sample{
		Temperature: api.Float(22), Humidity: api.Float(55), Illuminance: api.Float(50),
	}, &DefaultCatalog()[0])

	assert.Equal(t, api.StatusOK, recs.Status)
	assert.Empty(t, recs.Alerts)
	assert.Len(t, recs.Tips, 3)
}

func TestSimulator_Backfill(t *testing.T) {
	fb := NewFakeBackend()
	now := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	fb.Now = func() time.Time { return now }

	sim := &Simulator{Backend: fb, Interval: time.Minute, Rand: rand.New(rand.NewSource(1))}
	sim.Backfill(5)

	require.Len(t, fb.observations, 5)
	assert.Equal(t, now.Add(-4*time.Minute), fb.observations[0].Timestamp)
	assert.Equal(t, now, fb.observations[4].Timestamp)
	for _, s := range fb.observations {
		require.NotNil(t, s.Illuminance)
		assert.GreaterOrEqual(t, *s.Illuminance, 0.0)
		assert.LessOrEqual(t, *s.Illuminance, 100.0)
		assert.Equal(t, DefaultPlantType, s.PlantType)
	}
}

func TestSimulator_DropRate(t *testing.T) {
	sim := &Simulator{Backend: NewFakeBackend(), Rand: rand.New(rand.NewSource(7)), DropRate: 1}
	s := sim.Next(time.Now())
	assert.Nil(t, s.Temperature)
	assert.Nil(t, s.Humidity)
	assert.NotNil(t, s.Illuminance)
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	fb := NewFakeBackend()
	sim := &Simulator{Backend: fb, Interval: 5 * time.Millisecond, Rand: rand.New(rand.NewSource(3))}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		return len(fb.observations) >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop")
	}
}
