package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	apitesting "github.com/rileyhilliard/plantdash/internal/api/testing"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/logger"
	"github.com/rileyhilliard/plantdash/internal/ui"
)

type fakeBackendOptions struct {
	Addr     string
	Interval time.Duration
	Backfill int
	DropRate float64

	// AccessLog receives one Apache-style line per request when set.
	AccessLog io.Writer

	// ready, when set, receives the bound address once the listener is up.
	ready func(addr string)
}

// fakeBackendCommand serves an in-memory backend until ctx ends. A
// simulator appends one reading per interval.
func fakeBackendCommand(ctx context.Context, out io.Writer, opts fakeBackendOptions) error {
	if err := validateDropRate(opts.DropRate); err != nil {
		return err
	}

	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}

	backend := apitesting.NewFakeBackend()
	sim := &apitesting.Simulator{
		Backend:  backend,
		Interval: opts.Interval,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		DropRate: opts.DropRate,
	}
	if opts.Backfill > 0 {
		sim.Backfill(opts.Backfill)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Cannot listen on %s", opts.Addr),
			"Pick a free port with --addr, like :5050")
	}

	log := logger.NewEnvLogger("fake-backend")
	handler := backend.Handler()
	if opts.AccessLog != nil {
		handler = handlers.LoggingHandler(opts.AccessLog, handler)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sim.Run(ctx)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	addr := ln.Addr().String()
	fmt.Fprintf(out, "%s Fake backend listening on http://%s/api\n", ui.SuccessStyle().Render(ui.SymbolSuccess), addr)
	fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("  %d readings seeded, one more every %s. Ctrl+C to stop.", opts.Backfill, sim.Interval)))
	log.Info("serving on %s", addr)
	if opts.ready != nil {
		opts.ready(addr)
	}

	select {
	case err := <-served:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown: %v", err)
	}
	log.Info("stopped")
	return nil
}

// accessLogWriter returns w when request logging is on.
func accessLogWriter(enabled bool, w io.Writer) io.Writer {
	if !enabled {
		return nil
	}
	return w
}
