package cli

import (
	"context"
	"io"
	"os"

	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/tui"
	"golang.org/x/term"
)

// isTerminal is swapped out in tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// dashboardCommand opens the TUI, or the headless watch loop when out is
// not a terminal.
func dashboardCommand(ctx context.Context, out io.Writer) error {
	if !isTerminal(out) {
		return watchCommand(ctx, out, watchOptions{})
	}

	s, err := openSession(os.Stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	dash := dashboard.NewDashboard(ctrl, dashboard.NewChartSet(tui.RendererFactory), s.log)
	rec := dashboard.NewReconciler(s.client, s.log)

	s.log.Info("dashboard starting against %s", s.client.BaseURL())
	err = tui.Run(ctx, tui.NewModel(ctx, ctrl, dash, rec, s.cfg.Poll.Interval, s.log))
	s.log.Info("dashboard closed")
	return err
}
