// Package tui is the interactive terminal dashboard. It drives the
// dashboard engine from a Bubble Tea program: a setup overlay, three views
// (home, plant, config) and a tick chain that runs poll cycles.
package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/logger"
	"github.com/rileyhilliard/plantdash/internal/ui"
)

const (
	headerHeight = 3
	footerHeight = 2
	chartHeight  = 4
)

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// bootMsg carries the result of the startup loads.
type bootMsg struct {
	err error
}

// cycleDoneMsg reports a finished poll cycle.
type cycleDoneMsg struct {
	outcome dashboard.Outcome
	manual  bool
}

// mutationMsg reports a backend-confirmed (or failed) form submission.
type mutationMsg struct {
	kind formKind
	conf *dashboard.Confirmation
	err  error
}

// savedLoadedMsg reports a refresh of the saved-profile list.
type savedLoadedMsg struct {
	err error
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx      context.Context
	ctrl     *dashboard.Controller
	dash     *dashboard.Dashboard
	rec      *dashboard.Reconciler
	interval time.Duration
	log      logger.Logger
	keys     KeyMap

	width    int
	height   int
	view     ViewMode
	showHelp bool
	quitting bool
	booted   bool
	status   string

	ticking bool
	timers  int

	form     *huh.Form
	formKind formKind
	values   *formValues

	spin          spinner.Model
	plantViewport viewport.Model
	viewportReady bool
}

// NewModel creates the dashboard model. A non-positive interval means
// dashboard.DefaultInterval.
func NewModel(ctx context.Context, ctrl *dashboard.Controller, dash *dashboard.Dashboard, rec *dashboard.Reconciler, interval time.Duration, log logger.Logger) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if interval <= 0 {
		interval = dashboard.DefaultInterval
	}
	if log == nil {
		log = logger.Noop()
	}

	sp := spinner.New()
	sp.Spinner = ui.SpinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		dash:     dash,
		rec:      rec,
		interval: interval,
		log:      log,
		keys:     DefaultKeyMap(),
		view:     ViewHome,
		values:   &formValues{Mode: modeNew},
		spin:     sp,
	}
}

// Init loads the catalog and configuration and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootCmd(), m.spin.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case bootMsg:
		m.booted = true
		if msg.err != nil {
			m.status = dashboard.StatusLoadFailed
		}
		return m, m.openSetup()

	case tickMsg:
		if !m.ticking {
			return m, nil
		}
		return m, tea.Batch(m.tickCmd(), m.cycleCmd(false))

	case cycleDoneMsg:
		if msg.outcome != dashboard.Skipped {
			m.refreshPlantViewport()
		}
		return m, nil

	case mutationMsg:
		return m.handleMutation(msg)

	case savedLoadedMsg:
		switch {
		case msg.err != nil:
			m.status = dashboard.StatusLoadFailed
		case len(m.ctrl.SavedConfigs()) == 0:
			m.status = dashboard.StatusNoSaved
		default:
			m.values.SavedID = ""
			return m, m.openForm(formActivate, newActivateForm(m.values, m.ctrl.SavedConfigs()))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.form != nil {
		if key.Matches(msg, m.keys.Close) && m.formKind != formSetup {
			m.closeForm()
			return m, nil
		}
		return m.updateForm(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Close) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Refresh):
		if !m.ctrl.Confirmed() {
			m.status = dashboard.StatusCompleteSetup
			return m, nil
		}
		return m, m.cycleCmd(true)
	case key.Matches(msg, m.keys.Home):
		m.setView(ViewHome)
	case key.Matches(msg, m.keys.Plant):
		m.setView(ViewPlant)
	case key.Matches(msg, m.keys.Config):
		m.setView(ViewConfig)
	case key.Matches(msg, m.keys.NextView):
		m.setView(Views[(int(m.view)+1)%len(Views)])
	case m.view == ViewConfig && key.Matches(msg, m.keys.Interval):
		m.values.Seconds = strconv.Itoa(m.ctrl.SamplingSeconds())
		return m, m.openForm(formInterval, newIntervalForm(m.values))
	case m.view == ViewConfig && key.Matches(msg, m.keys.Activate):
		return m, m.loadSavedCmd()
	case m.view == ViewConfig && key.Matches(msg, m.keys.NewProfile):
		m.values.prefill(nil, m.ctrl.PendingPlantType())
		m.values.PlantName = ""
		return m, m.openForm(formNewProfile, newProfileForm(m.values, m.ctrl.Catalog()))
	case m.view == ViewPlant && (key.Matches(msg, m.keys.ScrollUp) || key.Matches(msg, m.keys.ScrollDown)):
		var cmd tea.Cmd
		m.plantViewport, cmd = m.plantViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateForm forwards a message to the open form and reacts when it
// completes or aborts.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	// The plant view previews the type picked in the setup overlay.
	if m.formKind == formSetup && m.values.Mode == modeNew && m.values.PlantType != m.ctrl.PendingPlantType() {
		m.ctrl.SelectPlantType(m.values.PlantType)
		m.refreshPlantViewport()
	}

	switch m.form.State {
	case huh.StateCompleted:
		kind := m.formKind
		values := *m.values
		m.form = nil
		return m, m.submitCmd(kind, values)
	case huh.StateAborted:
		if m.formKind == formSetup {
			m.status = dashboard.StatusCompleteSetup
			return m, m.openSetup()
		}
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = dashboard.StatusText(msg.err)
		m.log.Debug("form %d rejected: %v", msg.kind, msg.err)
		if msg.kind == formSetup {
			// Keep what was typed; the overlay stays until a save is confirmed.
			return m, m.openForm(formSetup, newSetupForm(m.values, m.ctrl.Catalog(), m.ctrl.SavedConfigs()))
		}
		m.formKind = formNone
		return m, nil
	}

	m.status = msg.conf.Status
	m.formKind = formNone
	m.refreshPlantViewport()
	return m, m.startPolling()
}

// startPolling creates the refresh timer on the first confirmed
// configuration. Later confirmations only run a one-off cycle.
func (m *Model) startPolling() tea.Cmd {
	if m.ctrl.MarkPollingStarted() {
		m.ticking = true
		m.timers++
		return tea.Batch(m.cycleCmd(true), m.tickCmd())
	}
	return m.cycleCmd(true)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ticking = false
	m.ctrl.MarkPollingStopped()
	return m, tea.Quit
}

func (m *Model) openSetup() tea.Cmd {
	active := m.ctrl.Active()
	m.values.prefill(active, m.ctrl.PendingPlantType())
	if active != nil && active.PlantType != "" {
		m.ctrl.SelectPlantType(active.PlantType)
	}
	saved := m.ctrl.SavedConfigs()
	if len(saved) > 0 {
		m.values.SavedID = saved[0].ID
	}
	return m.openForm(formSetup, newSetupForm(m.values, m.ctrl.Catalog(), saved))
}

func (m *Model) openForm(kind formKind, f *huh.Form) tea.Cmd {
	m.form = f
	m.formKind = kind
	return f.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m *Model) setView(v ViewMode) {
	m.view = v
	if v == ViewPlant {
		m.refreshPlantViewport()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.viewportReady {
		m.plantViewport = viewport.New(width, vpHeight)
		m.plantViewport.YPosition = headerHeight
		m.viewportReady = true
	} else {
		m.plantViewport.Width = width
		m.plantViewport.Height = vpHeight
	}
	m.refreshPlantViewport()
}

func (m *Model) refreshPlantViewport() {
	if !m.viewportReady {
		return
	}
	m.plantViewport.SetContent(renderProfile(m.ctrl.Profile(), m.ctrl.Thresholds()))
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// cycleCmd runs one poll cycle off the UI goroutine. Cycle results land in
// the shared Dashboard; the message only tells the model to repaint.
func (m Model) cycleCmd(manual bool) tea.Cmd {
	ctx, ctrl, rec, dash := m.ctx, m.ctrl, m.rec, m.dash
	return func() tea.Msg {
		return cycleDoneMsg{outcome: dashboard.RunCycle(ctx, ctrl, rec, dash, manual), manual: manual}
	}
}

func (m Model) bootCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		var first error
		for _, load := range []func(context.Context) error{ctrl.LoadCatalog, ctrl.LoadSavedConfigs, ctrl.LoadActiveConfig} {
			if err := load(ctx); err != nil && first == nil {
				first = err
			}
		}
		return bootMsg{err: first}
	}
}

func (m Model) loadSavedCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return savedLoadedMsg{err: ctrl.LoadSavedConfigs(ctx)}
	}
}

func (m Model) submitCmd(kind formKind, v formValues) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		var (
			conf *dashboard.Confirmation
			err  error
		)
		switch kind {
		case formSetup:
			if v.Mode == modeSaved {
				conf, err = ctrl.ActivateSaved(ctx, v.SavedID)
			} else {
				conf, err = ctrl.SubmitSetup(ctx, v.request())
			}
		case formInterval:
			conf, err = ctrl.UpdateSampling(ctx, parseSeconds(v.Seconds))
		case formActivate:
			conf, err = ctrl.ActivateSaved(ctx, v.SavedID)
		case formNewProfile:
			conf, err = ctrl.SaveProfile(ctx, v.request())
		}
		return mutationMsg{kind: kind, conf: conf, err: err}
	}
}

// Timers reports how many refresh timers the model has created.
func (m Model) Timers() int {
	return m.timers
}

// Ticking reports whether the refresh timer is running.
func (m Model) Ticking() bool {
	return m.ticking
}

// Status returns the last status line.
func (m Model) Status() string {
	return m.status
}

// CurrentView returns the active page.
func (m Model) CurrentView() ViewMode {
	return m.view
}

// SetupOpen reports whether the blocking setup overlay is showing.
func (m Model) SetupOpen() bool {
	return m.form != nil && m.formKind == formSetup
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.ctrl.MarkPollingStopped()
	return err
}
