package cli

import (
	"testing"
	"time"

	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/ui"
	"github.com/stretchr/testify/assert"
)

var watchNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRenderWatchCycle_TotalFailure(t *testing.T) {
	// Connectivity is left over from the last good cycle.
	snap := dashboard.Snapshot{
		Connectivity: health.Connected,
		Reachable:    false,
		DeviceStatus: dashboard.DeviceNoConnection,
		SystemStatus: dashboard.StatusBackendUnreachable,
		LastUpdate:   "5s",
	}

	out := renderWatchCycle(dashboard.TotalFailure, snap, dashboard.NewChartSet(nil), watchNow)

	assert.Contains(t, out, ui.SymbolFail+" "+dashboard.DeviceNoConnection)
	assert.NotContains(t, out, ui.SymbolComplete)
	assert.NotContains(t, out, "updated")
	assert.Contains(t, out, dashboard.StatusBackendUnreachable)
	assert.NotContains(t, out, "Temperature", "no metric rows on a failed cycle")
}

func TestRenderWatchCycle_Connected(t *testing.T) {
	snap := dashboard.Snapshot{
		Connectivity: health.Connected,
		Reachable:    true,
		DeviceStatus: dashboard.DeviceConnected,
		SystemStatus: dashboard.StatusHealthy,
		LastUpdate:   "5s",
	}

	out := renderWatchCycle(dashboard.Success, snap, dashboard.NewChartSet(nil), watchNow)

	assert.Contains(t, out, ui.SymbolComplete+" "+dashboard.DeviceConnected)
	assert.Contains(t, out, "updated 5s ago")
	assert.Contains(t, out, "Temperature")
}

func TestConnectivityGlyph(t *testing.T) {
	tests := []struct {
		name string
		snap dashboard.Snapshot
		want string
	}{
		{"waiting", dashboard.Snapshot{Reachable: true, Connectivity: health.Waiting}, ui.SymbolPending},
		{"connected", dashboard.Snapshot{Reachable: true, Connectivity: health.Connected}, ui.SymbolComplete},
		{"disconnected", dashboard.Snapshot{Reachable: true, Connectivity: health.Disconnected}, ui.SymbolFail},
		{"unreachable", dashboard.Snapshot{Reachable: false, Connectivity: health.Connected}, ui.SymbolFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, connectivityGlyph(tt.snap))
		})
	}
}
