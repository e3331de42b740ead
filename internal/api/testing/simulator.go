package testing

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
)

// Simulator feeds a FakeBackend with readings that drift around a daily
// cycle, so the dashboard has something to draw during local development.
type Simulator struct {
	Backend  *FakeBackend
	Interval time.Duration
	Rand     *rand.Rand

	// DropRate is the chance (0-1) that a DHT read fails and the sample
	// carries null temperature and humidity.
	DropRate float64
}

// Next builds one reading for time t.
func (s *Simulator) Next(t time.Time) api.Sample {
	r := s.Rand
	if r == nil {
		r = rand.New(rand.NewSource(t.UnixNano()))
	}

	// Phase of the day in radians, peaking mid-afternoon.
	hour := float64(t.Hour()) + float64(t.Minute())/60
	phase := (hour - 9) / 24 * 2 * math.Pi

	sample := api.Sample{Timestamp: t.UTC()}
	light := clamp(50+45*math.Sin(phase)+r.NormFloat64()*4, 0, 100)
	sample.Illuminance = api.Float(round1(light))

	if r.Float64() >= s.DropRate {
		temp := 22 + 5*math.Sin(phase) + r.NormFloat64()*0.6
		hum := 58 - 12*math.Sin(phase) + r.NormFloat64()*2
		sample.Temperature = api.Float(round1(temp))
		sample.Humidity = api.Float(round1(clamp(hum, 0, 100)))
	}
	return sample
}

// Run appends one reading per interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Backend.AddObservation(s.Next(s.Backend.Now()))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Backend.AddObservation(s.Next(s.Backend.Now()))
		}
	}
}

// Backfill seeds n readings spaced one interval apart, ending now.
func (s *Simulator) Backfill(n int) {
	interval := s.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	now := s.Backend.Now()
	for i := n - 1; i >= 0; i-- {
		s.Backend.AddObservation(s.Next(now.Add(-time.Duration(i) * interval)))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
