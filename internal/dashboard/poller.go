package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/plantdash/internal/logger"
)

// DefaultInterval is how often the poller runs a cycle.
const DefaultInterval = 15 * time.Second

// Poller drives cycles on a fixed interval for the headless commands.
// The TUI schedules its own ticks but shares the same start guard.
type Poller struct {
	ctrl     *Controller
	dash     *Dashboard
	rec      *Reconciler
	interval time.Duration
	log      logger.Logger

	// OnCycle, when set, is called after every cycle that was not skipped.
	OnCycle func(Outcome, Snapshot)

	trigger chan struct{}
	timers  atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. A non-positive interval means DefaultInterval.
func NewPoller(ctrl *Controller, dash *Dashboard, rec *Reconciler, interval time.Duration, log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Poller{
		ctrl:     ctrl,
		dash:     dash,
		rec:      rec,
		interval: interval,
		log:      log,
		trigger:  make(chan struct{}, 1),
	}
}

// Interval returns the cycle interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start runs one cycle immediately and then one per interval until ctx is
// done or Stop is called. Only the first Start after a Stop creates a
// timer; later calls queue a one-off cycle instead and return false.
func (p *Poller) Start(ctx context.Context) bool {
	if !p.ctrl.MarkPollingStarted() {
		p.Trigger()
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.timers.Add(1)
	go p.loop(ctx, done)
	return true
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.timers.Add(-1)
	// A loop ended by its parent context frees the guard for the next Start.
	defer p.ctrl.MarkPollingStopped()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("polling every %s", p.interval)
	p.run(ctx, false)

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("poller stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			p.run(ctx, false)
		case <-p.trigger:
			p.run(ctx, true)
		}
	}
}

func (p *Poller) run(ctx context.Context, manual bool) {
	outcome := RunCycle(ctx, p.ctrl, p.rec, p.dash, manual)
	if outcome == Skipped {
		return
	}
	if p.OnCycle != nil {
		p.OnCycle(outcome, p.dash.Snapshot())
	}
}

// Trigger queues a manual cycle. Pending triggers coalesce.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop tears the timer down and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.ctrl.MarkPollingStopped()
}

// Wait blocks until the loop exits on its own (its context ended).
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ActiveTimers reports how many polling loops are running. It never
// exceeds one.
func (p *Poller) ActiveTimers() int {
	return int(p.timers.Load())
}
