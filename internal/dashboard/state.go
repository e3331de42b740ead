package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/logger"
)

// Defaults filled in when the active configuration lacks a field.
const (
	DefaultPlantName = "SmartPlant"
	DefaultLocation  = "Living Room"
	DefaultPlantType = "monstera-deliciosa"
	DefaultLimit     = 24
)

// User-facing results of controller operations.
const (
	StatusSetupSaved      = "Configuration saved and activated."
	StatusSetupFailed     = "Error saving configuration."
	StatusProfileSaved    = "Profile saved and activated."
	StatusSelectPlant     = "Select a plant."
	StatusSelectType      = "Select a plant type."
	StatusEnterName       = "Enter a plant name."
	StatusActivated       = "Plant activated."
	StatusActivateFailed  = "Could not activate."
	StatusSamplingUpdated = "Sampling interval updated."
	StatusSamplingFailed  = "Could not save."
	StatusLoadFailed      = "Could not load."
	StatusNoSaved         = "No saved plants."
	StatusCompleteSetup   = "Complete the setup to continue."
)

// SetupRequest is what the setup form and the save-profile form collect.
type SetupRequest struct {
	PlantName       string
	Location        string
	PlantType       string
	SamplingSeconds int
}

// Confirmation is a backend-confirmed mutation.
type Confirmation struct {
	Status string
	Config api.Configuration
}

// Controller owns the configuration and profile state. It changes only
// after the backend confirms a mutation.
type Controller struct {
	mu       sync.RWMutex
	backend  api.Backend
	log      logger.Logger
	resolver *health.Resolver
	limit    int

	catalog        []api.PlantProfile
	saved          []api.SavedConfig
	active         *api.Configuration
	profile        *api.PlantProfile
	pendingType    string
	confirmed      bool
	pollingStarted bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLimit sets how many samples each cycle requests.
func WithLimit(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithFallbacks replaces the ranges used when a profile has none.
func WithFallbacks(f health.Fallbacks) ControllerOption {
	return func(c *Controller) {
		c.resolver = &health.Resolver{Fallbacks: f}
	}
}

// WithLogger routes controller diagnostics to l.
func WithLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController creates a controller with no active configuration.
func NewController(backend api.Backend, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:  backend,
		log:      logger.Noop(),
		resolver: health.NewResolver(),
		limit:    DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadCatalog fetches the plant catalog.
func (c *Controller) LoadCatalog(ctx context.Context) error {
	plants, err := c.backend.ListPlants(ctx)
	if err != nil {
		c.log.Error("could not load plant catalog: %v", err)
		return wrapStatus(err, StatusLoadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = plants
	c.setProfileLocked(c.profile)
	return nil
}

// LoadSavedConfigs fetches the saved profiles.
func (c *Controller) LoadSavedConfigs(ctx context.Context) error {
	saved, err := c.backend.ListSavedConfigs(ctx)
	if err != nil {
		c.log.Error("could not load saved configs: %v", err)
		return wrapStatus(err, StatusLoadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = saved
	return nil
}

// LoadActiveConfig fetches the configuration the backend considers active.
// It does not confirm the setup: the user still has to submit or pick one.
func (c *Controller) LoadActiveConfig(ctx context.Context) error {
	cfg, err := c.backend.GetConfig(ctx)
	if err != nil {
		c.log.Error("could not load active config: %v", err)
		return wrapStatus(err, StatusLoadFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = cfg
	return nil
}

// SelectPlantType records the plant type picked in a form before anything
// is saved. The profile view follows the selection.
func (c *Controller) SelectPlantType(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingType = id
	c.setProfileLocked(c.lookupLocked(id))
}

// SubmitSetup saves the setup form as a new profile and activates it.
func (c *Controller) SubmitSetup(ctx context.Context, req SetupRequest) (*Confirmation, error) {
	return c.createAndActivate(ctx, req, StatusSetupSaved, StatusSetupFailed)
}

// SaveProfile saves a new named profile from the config view and activates it.
func (c *Controller) SaveProfile(ctx context.Context, req SetupRequest) (*Confirmation, error) {
	conf, err := c.createAndActivate(ctx, req, StatusProfileSaved, StatusSetupFailed)
	if err != nil {
		return nil, err
	}
	// Refresh the list so the new entry shows up; failure is only cosmetic.
	_ = c.LoadSavedConfigs(ctx)
	return conf, nil
}

func (c *Controller) createAndActivate(ctx context.Context, req SetupRequest, okStatus, failStatus string) (*Confirmation, error) {
	payload, err := c.normalizeSetup(req)
	if err != nil {
		return nil, err
	}

	saved, err := c.backend.CreateSavedConfig(ctx, payload)
	if err != nil {
		c.log.Error("create saved config: %v", err)
		return nil, wrapStatus(err, failStatus)
	}

	payload.PlantConfigID = saved.ID
	cfg, err := c.backend.SaveConfig(ctx, payload)
	if err != nil {
		c.log.Error("activate new config %s: %v", saved.ID, err)
		return nil, wrapStatus(err, failStatus)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = cfg
	c.pendingType = payload.PlantType
	c.setProfileLocked(c.profileForLocked(cfg))
	c.confirmed = true
	c.log.Info("activated %s (%s) as %s", payload.PlantName, payload.PlantType, saved.ID)

	return &Confirmation{Status: okStatus, Config: *cfg}, nil
}

func (c *Controller) normalizeSetup(req SetupRequest) (api.Configuration, error) {
	name := strings.TrimSpace(req.PlantName)
	if name == "" {
		return api.Configuration{}, errors.New(errors.ErrInput, StatusEnterName, "")
	}

	plantType := req.PlantType
	if plantType == "" {
		c.mu.RLock()
		plantType = c.pendingType
		c.mu.RUnlock()
	}
	if plantType == "" {
		return api.Configuration{}, errors.New(errors.ErrInput, StatusSelectType, "")
	}

	seconds := req.SamplingSeconds
	if seconds <= 0 {
		seconds = health.DefaultSamplingSeconds
	}

	return api.Configuration{
		PlantName:       name,
		Location:        strings.TrimSpace(req.Location),
		PlantType:       plantType,
		SamplingSeconds: seconds,
	}, nil
}

// ActivateSaved makes a saved profile the active configuration.
func (c *Controller) ActivateSaved(ctx context.Context, id string) (*Confirmation, error) {
	if id == "" {
		return nil, errors.New(errors.ErrInput, StatusSelectPlant, "")
	}

	cfg, err := c.backend.ActivateConfig(ctx, id)
	if err != nil {
		c.log.Error("activate %s: %v", id, err)
		return nil, wrapStatus(err, StatusActivateFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = cfg
	c.pendingType = cfg.PlantType
	c.setProfileLocked(c.profileForLocked(cfg))
	c.confirmed = true
	c.log.Info("activated saved config %s", id)

	return &Confirmation{Status: StatusActivated, Config: *cfg}, nil
}

// UpdateSampling changes only the sampling interval of the active
// configuration. Seconds of zero or less mean the default.
func (c *Controller) UpdateSampling(ctx context.Context, seconds int) (*Confirmation, error) {
	if seconds <= 0 {
		seconds = health.DefaultSamplingSeconds
	}

	c.mu.RLock()
	var base api.Configuration
	if c.active != nil {
		base = *c.active
	}
	c.mu.RUnlock()

	payload := api.Configuration{
		PlantName:       orDefault(base.PlantName, DefaultPlantName),
		Location:        orDefault(base.Location, DefaultLocation),
		PlantType:       orDefault(base.PlantType, DefaultPlantType),
		PlantConfigID:   base.PlantConfigID,
		SamplingSeconds: seconds,
	}

	cfg, err := c.backend.SaveConfig(ctx, payload)
	if err != nil {
		c.log.Error("update sampling to %ds: %v", seconds, err)
		return nil, wrapStatus(err, StatusSamplingFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = cfg
	c.confirmed = true
	c.log.Info("sampling interval set to %ds", seconds)

	return &Confirmation{Status: StatusSamplingUpdated, Config: *cfg}, nil
}

// ApplyProfileOverride adopts the profile a recommendations payload carried.
// With nil the current profile is kept (or resolved from the pending type).
func (c *Controller) ApplyProfileOverride(p *api.PlantProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		p = c.profile
	}
	c.setProfileLocked(p)
}

// setProfileLocked makes p current. A nil p falls back to the pending
// plant type's catalog entry.
func (c *Controller) setProfileLocked(p *api.PlantProfile) {
	if p == nil {
		p = c.lookupLocked(c.pendingType)
	}
	if p == nil {
		c.profile = nil
		return
	}
	cp := *p
	c.profile = &cp
	c.pendingType = cp.ID
}

// profileForLocked prefers the catalog entry and falls back to the profile
// the backend echoed with the configuration.
func (c *Controller) profileForLocked(cfg *api.Configuration) *api.PlantProfile {
	if p := c.lookupLocked(cfg.PlantType); p != nil {
		return p
	}
	return cfg.PlantProfile
}

func (c *Controller) lookupLocked(id string) *api.PlantProfile {
	if id == "" {
		return nil
	}
	for i := range c.catalog {
		if c.catalog[i].ID == id {
			return &c.catalog[i]
		}
	}
	return nil
}

// MarkPollingStarted flips the polling guard. It returns true only for the
// first caller; everyone else must not start another timer.
func (c *Controller) MarkPollingStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pollingStarted {
		return false
	}
	c.pollingStarted = true
	return true
}

// MarkPollingStopped releases the guard once the timer is torn down.
func (c *Controller) MarkPollingStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollingStarted = false
}

// PollingStarted reports whether a timer is running.
func (c *Controller) PollingStarted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pollingStarted
}

// Query builds the next cycle's query. The saved-config id wins over the
// plant type, which comes from the active config or the pending selection.
func (c *Controller) Query() Query {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := Query{Limit: c.limit}
	if c.active != nil && c.active.PlantConfigID != "" {
		q.PlantConfigID = c.active.PlantConfigID
		return q
	}
	if c.active != nil && c.active.PlantType != "" {
		q.PlantType = c.active.PlantType
	} else {
		q.PlantType = c.pendingType
	}
	return q
}

// Thresholds resolves the bands for the current profile.
func (c *Controller) Thresholds() health.Thresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolver.Resolve(c.profile)
}

// SamplingSeconds is the active interval, or the default when unset.
func (c *Controller) SamplingSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil || c.active.SamplingSeconds <= 0 {
		return health.DefaultSamplingSeconds
	}
	return c.active.SamplingSeconds
}

// Confirmed reports whether a configuration has been confirmed active.
// The setup overlay stays up until it is.
func (c *Controller) Confirmed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.confirmed
}

// Active returns a copy of the active configuration, if any.
func (c *Controller) Active() *api.Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return nil
	}
	cp := *c.active
	return &cp
}

// Profile returns a copy of the current plant profile, if any.
func (c *Controller) Profile() *api.PlantProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return nil
	}
	cp := *c.profile
	return &cp
}

// PendingPlantType returns the form selection.
func (c *Controller) PendingPlantType() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingType
}

// Catalog returns the plant catalog.
func (c *Controller) Catalog() []api.PlantProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.PlantProfile(nil), c.catalog...)
}

// SavedConfigs returns the saved profiles.
func (c *Controller) SavedConfigs() []api.SavedConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]api.SavedConfig(nil), c.saved...)
}

// PlantLabel is the header line: "Current plant: Basil".
func (c *Controller) PlantLabel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name := Placeholder
	if c.active != nil {
		name = orDefault(c.active.PlantName, DefaultPlantName)
	}
	return "Current plant: " + name
}

// ActiveInfo describes the active configuration for the config view.
func (c *Controller) ActiveInfo() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return "No active configuration."
	}
	return fmt.Sprintf("Active plant: %s (%s)",
		orDefault(c.active.PlantName, DefaultPlantName),
		orDefault(c.active.Location, DefaultLocation))
}

// StatusText extracts the fixed user-facing line from a controller error.
func StatusText(err error) string {
	if err == nil {
		return ""
	}
	if msg := errors.MessageOf(err); msg != "" {
		return msg
	}
	return StatusSetupFailed
}

// wrapStatus attaches a fixed status line to a backend error, keeping its code.
func wrapStatus(err error, status string) error {
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrNetwork
	}
	return errors.WrapWithCode(err, code, status, "")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
