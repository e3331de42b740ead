package tui

import "github.com/charmbracelet/bubbles/key"

// ViewMode is the page the dashboard shows.
type ViewMode int

const (
	ViewHome ViewMode = iota
	ViewPlant
	ViewConfig
)

// String returns the tab title.
func (v ViewMode) String() string {
	switch v {
	case ViewPlant:
		return "Plant"
	case ViewConfig:
		return "Config"
	default:
		return "Home"
	}
}

// Views lists the pages in tab order.
var Views = []ViewMode{ViewHome, ViewPlant, ViewConfig}

// KeyMap holds every binding the dashboard reacts to.
type KeyMap struct {
	Quit       key.Binding
	Refresh    key.Binding
	Home       key.Binding
	Plant      key.Binding
	Config     key.Binding
	NextView   key.Binding
	Help       key.Binding
	Close      key.Binding
	Interval   key.Binding
	Activate   key.Binding
	NewProfile key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q / Ctrl+C", "Quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Home: readings and charts"),
		),
		Plant: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Plant profile"),
		),
		Config: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Configuration"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "Next view"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle this help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Close form / help"),
		),
		Interval: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Change sampling interval (config)"),
		),
		Activate: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activate a saved plant (config)"),
		),
		NewProfile: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Save a new plant profile (config)"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up / k", "Scroll up (plant)"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down / j", "Scroll down (plant)"),
		),
	}
}

// HelpBindings returns the bindings in the order the help overlay lists them.
func (k KeyMap) HelpBindings() []key.Binding {
	return []key.Binding{
		k.Quit, k.Refresh, k.Home, k.Plant, k.Config, k.NextView,
		k.Interval, k.Activate, k.NewProfile,
		k.ScrollUp, k.ScrollDown, k.Close, k.Help,
	}
}

// FooterBindings are the short hints shown in the footer.
func (k KeyMap) FooterBindings(view ViewMode) []key.Binding {
	out := []key.Binding{k.Quit, k.Refresh, k.Home, k.Plant, k.Config}
	if view == ViewConfig {
		out = append(out, k.Interval, k.Activate, k.NewProfile)
	}
	return append(out, k.Help)
}
