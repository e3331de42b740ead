// Package dashboard is the reconciliation engine behind plantdash. It holds
// the active configuration and profile (Controller), runs poll cycles
// (Reconciler, Dashboard.Apply) and keeps the chart series current (ChartSet).
// Both the TUI and the headless watch command drive it.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/logger"
)

// Query selects which samples a cycle reads.
type Query = api.Query

// FetchResult is everything one cycle fetched. Exactly one of Samples or
// SamplesErr is meaningful; the same goes for Recs and RecsErr.
type FetchResult struct {
	Query      Query
	Samples    []api.Sample
	SamplesErr error
	Recs       *api.RecommendationsResponse
	RecsErr    error
	Duration   time.Duration
}

// Reconciler issues the concurrent fetch pair for a cycle.
type Reconciler struct {
	backend api.Backend
	log     logger.Logger
}

// NewReconciler creates a reconciler for backend.
func NewReconciler(backend api.Backend, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Noop()
	}
	return &Reconciler{backend: backend, log: log}
}

// Fetch requests observations and recommendations in parallel and waits for
// both. A recommendations failure is recorded but never touches the
// observation result.
func (r *Reconciler) Fetch(ctx context.Context, q Query) FetchResult {
	res := FetchResult{Query: q}
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		res.Samples, res.SamplesErr = r.backend.LatestObservations(ctx, q)
	}()

	go func() {
		defer wg.Done()
		res.Recs, res.RecsErr = r.backend.LatestRecommendations(ctx, q)
	}()

	wg.Wait()
	res.Duration = time.Since(start)

	if res.SamplesErr != nil {
		r.log.Error("observations fetch failed: %v", res.SamplesErr)
	}
	if res.RecsErr != nil {
		r.log.Warn("recommendations unavailable: %v", res.RecsErr)
	}
	r.log.Debug("cycle fetch %s: %d samples in %s", q.Values().Encode(), len(res.Samples), res.Duration)

	return res
}

// RunCycle performs one complete round: query, fetch, apply. manual marks
// a cycle triggered by a user action rather than the timer. Timer cycles
// are skipped while another cycle is still in flight.
func RunCycle(ctx context.Context, ctrl *Controller, rec *Reconciler, dash *Dashboard, manual bool) Outcome {
	if !dash.Begin(manual) {
		return Skipped
	}
	res := rec.Fetch(ctx, ctrl.Query())
	return dash.Apply(res, time.Now())
}
