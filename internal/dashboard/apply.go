package dashboard

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/logger"
)

// Outcome is how a cycle ended.
type Outcome int

const (
	// Success means both fetches succeeded.
	Success Outcome = iota
	// PartialFailure means telemetry arrived but recommendations did not.
	PartialFailure
	// TotalFailure means telemetry failed; nothing but the status changed.
	TotalFailure
	// Skipped means a timer cycle found another cycle still in flight.
	Skipped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case PartialFailure:
		return "partial"
	case TotalFailure:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CycleState is whether a cycle is in flight.
type CycleState int

const (
	Idle CycleState = iota
	Polling
)

// String returns the state name.
func (s CycleState) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Fixed status strings. Raw errors only ever reach the log.
const (
	StatusBackendUnreachable = "Backend unreachable"
	StatusNoRecentData       = "No recent data"
	StatusAttention          = "Attention"
	StatusHealthy            = "Healthy"
	StatusNoData             = "No data"

	DeviceConnected    = "Device connected"
	DeviceDisconnected = "Device disconnected"
	DeviceWaiting      = "Device waiting"
	DeviceNoConnection = "No connection"

	Placeholder = "--"
)

// Card is one metric tile.
type Card struct {
	Metric         health.Metric
	Value          *float64
	Text           string
	Range          api.Range
	Classification health.Classification
}

// AdviceLine is one rendered recommendation.
type AdviceLine struct {
	Label   string
	Message string
}

// RecPanel is the rendered recommendation panel.
type RecPanel struct {
	Available bool
	Alert     bool
	Pill      string
	Summary   string
	Details   string
	Alerts    []AdviceLine
	Tips      []AdviceLine
	Empty     string
}

// Snapshot is everything the views render. It is a value; callers get copies.
type Snapshot struct {
	SystemStatus string
	SystemAlert  bool
	DeviceStatus string
	Connectivity health.Connectivity
	Reachable    bool

	LastUpdate string
	LatestAt   *time.Time

	Temperature  Card
	Humidity     Card
	Light        Card
	LightPercent float64

	Recs RecPanel

	State       CycleState
	Cycles      int
	LastOutcome Outcome
	LastCycleAt time.Time
	SampleCount int
}

// Cards returns the three metric cards in display order.
func (s Snapshot) Cards() []Card {
	return []Card{s.Temperature, s.Humidity, s.Light}
}

// Dashboard applies fetch results to the rendered state.
type Dashboard struct {
	mu       sync.Mutex
	ctrl     *Controller
	charts   *ChartSet
	log      logger.Logger
	snap     Snapshot
	inFlight int
}

// NewDashboard creates a dashboard showing the pre-data placeholders.
func NewDashboard(ctrl *Controller, charts *ChartSet, log logger.Logger) *Dashboard {
	if charts == nil {
		charts = NewChartSet(nil)
	}
	if log == nil {
		log = logger.Noop()
	}
	d := &Dashboard{ctrl: ctrl, charts: charts, log: log}
	d.snap = Snapshot{
		SystemStatus: StatusNoData,
		DeviceStatus: DeviceWaiting,
		Connectivity: health.Waiting,
		Reachable:    true,
		LastUpdate:   Placeholder,
		Recs:         noDataPanel(),
	}
	d.setCardsLocked(nil, ctrl.Thresholds())
	return d
}

// Charts returns the chart set the dashboard feeds.
func (d *Dashboard) Charts() *ChartSet {
	return d.charts
}

// Snapshot returns a copy of the current rendered state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.snap
	s.Recs.Alerts = append([]AdviceLine(nil), d.snap.Recs.Alerts...)
	s.Recs.Tips = append([]AdviceLine(nil), d.snap.Recs.Tips...)
	return s
}

// State reports whether a cycle is in flight.
func (d *Dashboard) State() CycleState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap.State
}

// Begin marks a cycle as started. Timer cycles (manual=false) are refused
// while another cycle is in flight; manual ones always run and the last
// result applied wins.
func (d *Dashboard) Begin(manual bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight > 0 && !manual {
		d.log.Debug("cycle skipped: previous cycle still in flight")
		return false
	}
	d.inFlight++
	d.snap.State = Polling
	return true
}

// Apply folds one fetch result into the rendered state, in a fixed order:
// connectivity and cards, recommendations, profile override, then charts.
// A telemetry failure only changes the status lines.
func (d *Dashboard) Apply(res FetchResult, now time.Time) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFlight > 0 {
		d.inFlight--
	}
	if d.inFlight == 0 {
		d.snap.State = Idle
	}
	d.snap.Cycles++
	d.snap.LastCycleAt = now

	if res.SamplesErr != nil {
		d.log.Debug("cycle %d total failure [%s]", d.snap.Cycles, errors.CodeOf(res.SamplesErr))
		d.snap.SystemStatus = StatusBackendUnreachable
		d.snap.SystemAlert = true
		d.snap.DeviceStatus = DeviceNoConnection
		d.snap.Reachable = false
		d.snap.LastOutcome = TotalFailure
		return TotalFailure
	}
	d.snap.Reachable = true
	d.snap.SampleCount = len(res.Samples)

	thresholds := d.ctrl.Thresholds()

	if len(res.Samples) == 0 {
		d.log.Debug("cycle %d: no samples [%s]", d.snap.Cycles, errors.ErrEmpty)
		d.setCardsLocked(nil, thresholds)
		d.snap.LastUpdate = Placeholder
		d.snap.LatestAt = nil
		d.snap.Connectivity = health.Waiting
		d.snap.DeviceStatus = DeviceWaiting
	} else {
		latest := res.Samples[len(res.Samples)-1]
		d.setCardsLocked(&latest, thresholds)

		ts := latest.Timestamp
		d.snap.LatestAt = &ts
		d.snap.LastUpdate = health.FormatAge(ts, now)
		d.snap.Connectivity = health.DetectConnectivity(&ts, float64(d.ctrl.SamplingSeconds()), now)
		if d.snap.Connectivity == health.Disconnected {
			d.log.Debug("cycle %d: newest sample %s old [%s]", d.snap.Cycles, d.snap.LastUpdate, errors.ErrStale)
			d.snap.DeviceStatus = DeviceDisconnected
		} else {
			d.snap.DeviceStatus = DeviceConnected
		}
	}

	outcome := Success
	if res.RecsErr != nil || res.Recs == nil {
		d.snap.Recs = noDataPanel()
		outcome = PartialFailure
	} else {
		d.snap.Recs = recPanel(res.Recs.Recommendations)
	}

	// The disconnected warning outranks the recommendation pill: a stale
	// device keeps "No recent data" on the status line even when fresh
	// recommendations arrived. The pill itself still shows their verdict.
	switch {
	case d.snap.Connectivity == health.Disconnected:
		d.snap.SystemStatus = StatusNoRecentData
		d.snap.SystemAlert = true
	default:
		d.snap.SystemStatus = d.snap.Recs.Pill
		d.snap.SystemAlert = d.snap.Recs.Alert
	}

	var override *api.PlantProfile
	if res.Recs != nil {
		override = res.Recs.Profile
	}
	d.ctrl.ApplyProfileOverride(override)

	d.charts.Update(res.Samples)

	d.snap.LastOutcome = outcome
	return outcome
}

func (d *Dashboard) setCardsLocked(latest *api.Sample, th health.Thresholds) {
	var temp, hum, light *float64
	if latest != nil {
		temp, hum, light = latest.Temperature, latest.Humidity, latest.Illuminance
	}

	d.snap.Temperature = newCard(health.Temperature, temp, th.Temperature, "%.1f °C")
	d.snap.Humidity = newCard(health.Humidity, hum, th.Humidity, "%.1f %%")
	d.snap.Light = newCard(health.Light, light, th.Illuminance, "%.0f %%")

	d.snap.LightPercent = 0
	if light != nil && !math.IsNaN(*light) {
		d.snap.LightPercent = math.Min(math.Max(*light, 0), 100)
	}
}

func newCard(m health.Metric, v *float64, r api.Range, format string) Card {
	c := Card{
		Metric:         m,
		Value:          v,
		Text:           Placeholder,
		Range:          r,
		Classification: health.Classify(v, r),
	}
	if v != nil && !math.IsNaN(*v) {
		c.Text = fmt.Sprintf(format, *v)
	}
	return c
}

func noDataPanel() RecPanel {
	return RecPanel{
		Pill:    StatusNoData,
		Summary: "Waiting for readings from the device",
		Details: "Connect the device and check its Wi-Fi network.",
		Empty:   "No data yet.",
	}
}

func recPanel(recs api.Recommendations) RecPanel {
	p := RecPanel{Available: true, Alert: recs.NeedsAttention()}
	if p.Alert {
		p.Pill = StatusAttention
		p.Summary = "Attention: your plant needs care"
	} else {
		p.Pill = StatusHealthy
		p.Summary = "Optimal conditions: your plant is healthy"
	}

	switch {
	case p.Alert && len(recs.Alerts) > 0:
		p.Details = adviceLine(recs.Alerts[0]).String()
	case len(recs.Tips) > 0:
		p.Details = adviceLine(recs.Tips[0]).String()
	default:
		p.Details = "Based on the latest reading."
	}

	for _, a := range recs.Alerts {
		p.Alerts = append(p.Alerts, adviceLine(a))
	}
	for _, t := range recs.Tips {
		p.Tips = append(p.Tips, adviceLine(t))
	}
	if len(p.Alerts) == 0 && len(p.Tips) == 0 {
		p.Empty = "No recommendations."
	}
	return p
}

func adviceLine(a api.Advice) AdviceLine {
	return AdviceLine{Label: health.FeatureLabel(a.Feature), Message: a.Message}
}

// String renders "Label: message", or just the message when unlabelled.
func (a AdviceLine) String() string {
	if a.Label == "" {
		return a.Message
	}
	return a.Label + ": " + a.Message
}
