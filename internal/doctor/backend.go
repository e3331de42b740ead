package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/health"
)

// Backend is the slice of the backend API the checks probe. *api.Client
// satisfies it.
type Backend interface {
	Health(ctx context.Context) (*api.HealthStatus, error)
	ListPlants(ctx context.Context) ([]api.PlantProfile, error)
	GetConfig(ctx context.Context) (*api.Configuration, error)
	LatestObservations(ctx context.Context, q api.Query) ([]api.Sample, error)
}

// BackendHealthCheck probes GET /health.
type BackendHealthCheck struct {
	Backend Backend
	BaseURL string
}

func (c *BackendHealthCheck) Name() string     { return "backend_health" }
func (c *BackendHealthCheck) Category() string { return "BACKEND" }

func (c *BackendHealthCheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	status, err := c.Backend.Health(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot reach %s (%s)", c.BaseURL, errors.MessageOf(err)),
			Suggestion: "Start the backend or fix api.base_url (PLANTDASH_API_BASE_URL)",
		}
	}

	service := status.Service
	if service == "" {
		service = "backend"
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is %s (%dms)", service, status.Status, time.Since(start).Milliseconds()),
	}
}

func (c *BackendHealthCheck) Fix() error { return nil }

// CatalogCheck verifies the plant catalog is non-empty.
type CatalogCheck struct {
	Backend Backend
}

func (c *CatalogCheck) Name() string     { return "plant_catalog" }
func (c *CatalogCheck) Category() string { return "BACKEND" }

func (c *CatalogCheck) Run(ctx context.Context) CheckResult {
	plants, err := c.Backend.ListPlants(ctx)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Could not load the plant catalog: " + errors.MessageOf(err),
		}
	}
	if len(plants) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Plant catalog is empty",
			Suggestion: "Setup needs at least one plant type to choose from",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d plant type%s in the catalog", len(plants), pluralize(len(plants))),
	}
}

func (c *CatalogCheck) Fix() error { return nil }

// ActiveConfigCheck reports the configuration the device is using.
type ActiveConfigCheck struct {
	Backend Backend
}

func (c *ActiveConfigCheck) Name() string     { return "active_config" }
func (c *ActiveConfigCheck) Category() string { return "DEVICE" }

func (c *ActiveConfigCheck) Run(ctx context.Context) CheckResult {
	cfg, err := c.Backend.GetConfig(ctx)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Could not read the active configuration: " + errors.MessageOf(err),
		}
	}
	if cfg.PlantType == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No plant type is active",
			Suggestion: "Run 'plantdash setup' to pick one",
		}
	}
	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("%s in %s (%s), sampling every %ds",
			cfg.PlantName, cfg.Location, cfg.PlantType,
			int(health.EffectiveSamplingSeconds(float64(cfg.SamplingSeconds)))),
	}
}

func (c *ActiveConfigCheck) Fix() error { return nil }

// TelemetryCheck reads the newest sample for the active configuration and
// applies the same staleness rule as the dashboard.
type TelemetryCheck struct {
	Backend Backend
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c *TelemetryCheck) Name() string     { return "telemetry" }
func (c *TelemetryCheck) Category() string { return "DEVICE" }

func (c *TelemetryCheck) Run(ctx context.Context) CheckResult {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	cfg, err := c.Backend.GetConfig(ctx)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Skipped: active configuration unavailable",
		}
	}

	q := api.Query{Limit: 1, PlantConfigID: cfg.PlantConfigID, PlantType: cfg.PlantType}
	samples, err := c.Backend.LatestObservations(ctx, q)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: "Could not read observations: " + errors.MessageOf(err),
		}
	}
	if len(samples) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No readings yet for the active plant",
			Suggestion: "Connect the device and check its Wi-Fi network",
		}
	}

	ts := samples[len(samples)-1].Timestamp
	age := health.FormatAge(ts, now())
	if health.DetectConnectivity(&ts, float64(cfg.SamplingSeconds), now()) == health.Disconnected {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Newest reading is " + age + " old; the device looks disconnected",
			Suggestion: "Power-cycle the device or check its Wi-Fi network",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Newest reading is " + age + " old",
	}
}

func (c *TelemetryCheck) Fix() error { return nil }
