package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/ui"
)

// SparklineWidth is how many of the newest points each watch sparkline shows.
const SparklineWidth = 24

type watchOptions struct {
	Interval time.Duration // zero means poll.interval
	Count    int           // zero runs until ctx ends
}

// watchCommand runs the reconciliation loop against the backend's active
// configuration and prints one block per completed cycle.
func watchCommand(ctx context.Context, out io.Writer, opts watchOptions) error {
	s, err := openSession(out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	if err := ctrl.LoadCatalog(ctx); err != nil {
		s.log.Warn("catalog unavailable, using fallback ranges: %v", err)
	}
	if err := ctrl.LoadActiveConfig(ctx); err != nil {
		return err
	}
	if active := ctrl.Active(); active != nil {
		ctrl.SelectPlantType(active.PlantType)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = s.cfg.Poll.Interval
	}

	charts := dashboard.NewChartSet(nil)
	dash := dashboard.NewDashboard(ctrl, charts, s.log)
	rec := dashboard.NewReconciler(s.client, s.log)

	ui.PrintHeader(out, ui.HeaderInfo{
		Version: formatVersion(GetVersion()),
		Tagline: ctrl.PlantLabel(),
		Backend: s.client.BaseURL(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cycles atomic.Int32
	poller := dashboard.NewPoller(ctrl, dash, rec, interval, s.log)
	poller.OnCycle = func(outcome dashboard.Outcome, snap dashboard.Snapshot) {
		fmt.Fprint(out, renderWatchCycle(outcome, snap, charts, time.Now()))
		if opts.Count > 0 && int(cycles.Add(1)) >= opts.Count {
			cancel()
		}
	}

	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

// renderWatchCycle is the block printed after a cycle: a status line, then
// one sparkline row per metric when the window has data.
func renderWatchCycle(outcome dashboard.Outcome, snap dashboard.Snapshot, charts *dashboard.ChartSet, now time.Time) string {
	var b strings.Builder

	b.WriteString(ui.MutedStyle().Render(now.Format("15:04:05")))
	b.WriteString(" ")
	b.WriteString(connectivityGlyph(snap))
	b.WriteString(" ")
	b.WriteString(snap.DeviceStatus)
	b.WriteString("  ")
	b.WriteString(pillStyle(snap).Render(snap.SystemStatus))
	if outcome != dashboard.TotalFailure && snap.LastUpdate != dashboard.Placeholder {
		b.WriteString(ui.MutedStyle().Render("  updated " + snap.LastUpdate + " ago"))
	}
	if outcome == dashboard.PartialFailure {
		b.WriteString(ui.MutedStyle().Render("  (recommendations unavailable)"))
	}
	b.WriteString("\n")

	if outcome == dashboard.TotalFailure {
		return b.String()
	}

	for _, style := range dashboard.Channels {
		card := cardFor(snap, style.Metric)
		line := fmt.Sprintf("  %-12s %-9s %-6s", style.Metric.Label(), card.Text, card.Classification.Label)
		if spark := sparklineFor(charts, style); spark != "" {
			line += " " + spark
		}
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func cardFor(snap dashboard.Snapshot, m health.Metric) dashboard.Card {
	switch m {
	case health.Temperature:
		return snap.Temperature
	case health.Humidity:
		return snap.Humidity
	default:
		return snap.Light
	}
}

func sparklineFor(charts *dashboard.ChartSet, style dashboard.ChannelStyle) string {
	buf, ok := charts.Renderer(style.Key).(*dashboard.SeriesBuffer)
	if !ok {
		return ""
	}
	_, data := buf.Series()
	return ui.RenderSparkline(data, SparklineWidth, lipgloss.Color(style.Color))
}

// connectivityGlyph marks an unreachable backend as disconnected, since
// Connectivity still holds the last good cycle's value.
func connectivityGlyph(snap dashboard.Snapshot) string {
	if !snap.Reachable {
		return ui.ErrorStyle().Render(ui.SymbolFail)
	}
	switch snap.Connectivity {
	case health.Connected:
		return ui.SuccessStyle().Render(ui.SymbolComplete)
	case health.Disconnected:
		return ui.ErrorStyle().Render(ui.SymbolFail)
	default:
		return ui.MutedStyle().Render(ui.SymbolPending)
	}
}

func pillStyle(snap dashboard.Snapshot) lipgloss.Style {
	switch snap.SystemStatus {
	case dashboard.StatusHealthy:
		return ui.SuccessStyle()
	case dashboard.StatusAttention, dashboard.StatusBackendUnreachable:
		return ui.ErrorStyle()
	case dashboard.StatusNoRecentData:
		return ui.WarningStyle()
	default:
		return ui.MutedStyle()
	}
}
