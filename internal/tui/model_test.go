package tui

import (
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/plantdash/internal/api"
	apitesting "github.com/rileyhilliard/plantdash/internal/api/testing"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	fake *apitesting.FakeBackend
	ctrl *dashboard.Controller
	dash *dashboard.Dashboard
	m    Model
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fake := apitesting.NewFakeBackend()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL+"/api", api.WithTimeout(5*time.Second))
	ctrl := dashboard.NewController(client)
	dash := dashboard.NewDashboard(ctrl, dashboard.NewChartSet(RendererFactory), nil)
	rec := dashboard.NewReconciler(client, nil)

	m := NewModel(t.Context(), ctrl, dash, rec, time.Minute, nil)
	return &testEnv{fake: fake, ctrl: ctrl, dash: dash, m: m}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func boot(t *testing.T, e *testEnv) Model {
	t.Helper()
	msg := e.m.bootCmd()()
	m, _ := update(t, e.m, msg)
	return m
}

func TestNewModel_Defaults(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, ViewHome, e.m.CurrentView())
	assert.Equal(t, time.Minute, e.m.interval)
	assert.False(t, e.m.Ticking())
	assert.Equal(t, 0, e.m.Timers())
	assert.False(t, e.m.SetupOpen())

	m := NewModel(t.Context(), e.ctrl, e.dash, nil, 0, nil)
	assert.Equal(t, dashboard.DefaultInterval, m.interval)
}

func TestModel_BootOpensPrefilledSetup(t *testing.T) {
	e := newTestEnv(t)
	m := boot(t, e)

	assert.True(t, m.booted)
	assert.True(t, m.SetupOpen())
	assert.Empty(t, m.Status())

	assert.Equal(t, "SmartPlant", m.values.PlantName)
	assert.Equal(t, "Living Room", m.values.Location)
	assert.Equal(t, apitesting.DefaultPlantType, m.values.PlantType)
	assert.Equal(t, "60", m.values.Seconds)

	// Booting never confirms anything on its own.
	assert.False(t, e.ctrl.Confirmed())
	assert.False(t, m.Ticking())
}

func TestModel_SetupIgnoresEscape(t *testing.T) {
	e := newTestEnv(t)
	m := boot(t, e)

	m, _ = update(t, m, keyMsg("esc"))
	assert.True(t, m.SetupOpen())
}

func TestModel_ConfirmationsCreateOneTimer(t *testing.T) {
	e := newTestEnv(t)
	m := e.m
	conf := &dashboard.Confirmation{Status: dashboard.StatusSetupSaved}

	m, cmd := update(t, m, mutationMsg{kind: formSetup, conf: conf})
	require.NotNil(t, cmd)
	assert.True(t, m.Ticking())
	assert.Equal(t, 1, m.Timers())
	assert.Equal(t, dashboard.StatusSetupSaved, m.Status())

	m, cmd = update(t, m, mutationMsg{kind: formInterval, conf: &dashboard.Confirmation{Status: dashboard.StatusSamplingUpdated}})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.Timers())
	assert.Equal(t, dashboard.StatusSamplingUpdated, m.Status())
	assert.True(t, e.ctrl.PollingStarted())
}

func TestModel_FailedSetupKeepsOverlay(t *testing.T) {
	e := newTestEnv(t)
	m := boot(t, e)
	m.values.PlantName = "Basil"

	err := errors.New(errors.ErrNetwork, dashboard.StatusSetupFailed, "")
	m, _ = update(t, m, mutationMsg{kind: formSetup, err: err})

	assert.True(t, m.SetupOpen())
	assert.Equal(t, dashboard.StatusSetupFailed, m.Status())
	assert.Equal(t, "Basil", m.values.PlantName)
	assert.False(t, m.Ticking())
}

func TestModel_FailedConfigMutationClosesForm(t *testing.T) {
	e := newTestEnv(t)
	m := e.m
	m.view = ViewConfig

	m, _ = update(t, m, keyMsg("i"))
	require.NotNil(t, m.form)
	m.form = nil

	err := errors.New(errors.ErrBackend, dashboard.StatusSamplingFailed, "")
	m, _ = update(t, m, mutationMsg{kind: formInterval, err: err})
	assert.Equal(t, formNone, m.formKind)
	assert.Equal(t, dashboard.StatusSamplingFailed, m.Status())
	assert.Equal(t, 0, m.Timers())
}

func TestModel_SubmitSetupThroughBackend(t *testing.T) {
	e := newTestEnv(t)
	m := boot(t, e)

	v := *m.values
	v.PlantName = "Basil"
	v.Location = "Kitchen"
	v.Seconds = "30"

	msg := m.submitCmd(formSetup, v)()
	mut, ok := msg.(mutationMsg)
	require.True(t, ok)
	require.NoError(t, mut.err)
	assert.Equal(t, dashboard.StatusSetupSaved, mut.conf.Status)

	active := e.fake.ActiveConfig()
	assert.Equal(t, "Basil", active.PlantName)
	assert.Equal(t, 30, active.SamplingSeconds)
	assert.NotEmpty(t, active.PlantConfigID)
}

func TestModel_SubmitIntervalBlankUsesDefault(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.ctrl.LoadActiveConfig(t.Context()))

	msg := e.m.submitCmd(formInterval, formValues{Seconds: ""})()
	mut := msg.(mutationMsg)
	require.NoError(t, mut.err)
	assert.Equal(t, 60, e.fake.ActiveConfig().SamplingSeconds)
}

func TestModel_TickWithoutTimerIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	_, cmd := update(t, e.m, tickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestModel_CycleRendersReadings(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ctrl.SubmitSetup(t.Context(), dashboard.SetupRequest{PlantName: "Monty", PlantType: apitesting.DefaultPlantType, SamplingSeconds: 60})
	require.NoError(t, err)

	e.fake.AddObservation(api.Sample{
		Timestamp:   time.Now(),
		Temperature: api.Float(35),
		Humidity:    api.Float(60),
		Illuminance: api.Float(50),
	})

	m := e.m
	m.booted = true
	cmd := m.cycleCmd(true)

	done, ok := cmd().(cycleDoneMsg)
	require.True(t, ok)
	assert.Equal(t, dashboard.Success, done.outcome)

	m, _ = update(t, m, done)

	view := m.View()
	assert.Contains(t, view, "Current plant: Monty")
	assert.Contains(t, view, "35.0 °C")
	assert.Contains(t, view, "High")
	assert.Contains(t, view, dashboard.StatusAttention)
	assert.Contains(t, view, dashboard.DeviceConnected)
	assert.Contains(t, view, "Temperature (°C)")
}

func TestModel_RefreshRequiresSetup(t *testing.T) {
	e := newTestEnv(t)
	m, cmd := update(t, e.m, keyMsg("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, dashboard.StatusCompleteSetup, m.Status())
}

func TestModel_ViewSwitching(t *testing.T) {
	e := newTestEnv(t)
	m := e.m

	m, _ = update(t, m, keyMsg("2"))
	assert.Equal(t, ViewPlant, m.CurrentView())
	m, _ = update(t, m, keyMsg("3"))
	assert.Equal(t, ViewConfig, m.CurrentView())
	m, _ = update(t, m, keyMsg("tab"))
	assert.Equal(t, ViewHome, m.CurrentView())
	m, _ = update(t, m, keyMsg("1"))
	assert.Equal(t, ViewHome, m.CurrentView())
}

func TestModel_ConfigKeysOnlyInConfigView(t *testing.T) {
	e := newTestEnv(t)
	m := e.m

	m, _ = update(t, m, keyMsg("i"))
	assert.Nil(t, m.form)

	m.view = ViewConfig
	m, _ = update(t, m, keyMsg("i"))
	require.NotNil(t, m.form)
	assert.Equal(t, formInterval, m.formKind)
	assert.Equal(t, "60", m.values.Seconds)

	m, _ = update(t, m, keyMsg("esc"))
	assert.Nil(t, m.form)
	assert.Equal(t, formNone, m.formKind)
}

func TestModel_ActivateWithNoSavedProfiles(t *testing.T) {
	e := newTestEnv(t)
	m := e.m
	m.view = ViewConfig

	m, cmd := update(t, m, keyMsg("a"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Nil(t, m.form)
	assert.Equal(t, dashboard.StatusNoSaved, m.Status())
}

func TestModel_ActivateOpensPicker(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ctrl.SubmitSetup(t.Context(), dashboard.SetupRequest{PlantName: "Basil", PlantType: apitesting.DefaultPlantType})
	require.NoError(t, err)

	m := e.m
	m.view = ViewConfig
	m, cmd := update(t, m, keyMsg("a"))
	m, _ = update(t, m, cmd())
	require.NotNil(t, m.form)
	assert.Equal(t, formActivate, m.formKind)
}

func TestModel_HelpToggle(t *testing.T) {
	e := newTestEnv(t)
	m := e.m
	m.width, m.height = 80, 30

	m, _ = update(t, m, keyMsg("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = update(t, m, keyMsg("esc"))
	assert.False(t, m.showHelp)
}

func TestModel_QuitStopsPolling(t *testing.T) {
	e := newTestEnv(t)
	m, _ := update(t, e.m, mutationMsg{kind: formSetup, conf: &dashboard.Confirmation{Status: dashboard.StatusSetupSaved}})
	require.True(t, e.ctrl.PollingStarted())

	m, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.False(t, m.Ticking())
	assert.False(t, e.ctrl.PollingStarted())
	assert.Empty(t, m.View())
}

func TestModel_CtrlCQuitsFromSetup(t *testing.T) {
	e := newTestEnv(t)
	m := boot(t, e)

	m, cmd := update(t, m, keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModel_WindowSizeSetsViewport(t *testing.T) {
	e := newTestEnv(t)
	m, _ := update(t, e.m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.True(t, m.viewportReady)
	assert.Equal(t, 100, m.plantViewport.Width)
	assert.Equal(t, 40-headerHeight-footerHeight, m.plantViewport.Height)
}

func TestModel_PlantViewWithoutProfile(t *testing.T) {
	e := newTestEnv(t)
	m := e.m
	m.booted = true
	m.view = ViewPlant
	assert.Contains(t, m.View(), "No selection")
}

func TestModel_ConfigViewListsSavedProfiles(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ctrl.SaveProfile(t.Context(), dashboard.SetupRequest{PlantName: "Fern", Location: "Bathroom", PlantType: apitesting.DefaultPlantType, SamplingSeconds: 45})
	require.NoError(t, err)

	m := e.m
	m.booted = true
	m.view = ViewConfig
	view := m.View()
	assert.Contains(t, view, "Active plant: Fern (Bathroom)")
	assert.Contains(t, view, "Sampling interval: 45s")
	assert.Contains(t, view, "Bathroom")
}
