package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
)

// formKind identifies which form is open.
type formKind int

const (
	formNone formKind = iota
	formSetup
	formInterval
	formActivate
	formNewProfile
)

// Setup modes offered by the overlay.
const (
	modeNew   = "new"
	modeSaved = "saved"
)

// formValues backs every form field. It lives on the heap so the forms can
// bind to it while the Model is passed around by value.
type formValues struct {
	Mode      string
	PlantName string
	Location  string
	PlantType string
	Seconds   string
	SavedID   string
}

// prefill seeds the values from the active configuration.
func (v *formValues) prefill(cfg *api.Configuration, pendingType string) {
	v.Mode = modeNew
	v.PlantName = dashboard.DefaultPlantName
	v.Location = dashboard.DefaultLocation
	v.PlantType = pendingType
	v.Seconds = ""
	if cfg == nil {
		if v.PlantType == "" {
			v.PlantType = dashboard.DefaultPlantType
		}
		return
	}
	if cfg.PlantName != "" {
		v.PlantName = cfg.PlantName
	}
	if cfg.Location != "" {
		v.Location = cfg.Location
	}
	if cfg.PlantType != "" {
		v.PlantType = cfg.PlantType
	}
	if cfg.SamplingSeconds > 0 {
		v.Seconds = strconv.Itoa(cfg.SamplingSeconds)
	}
}

// request converts the values into a setup request. Blank or unparsable
// seconds become zero, which the controller turns into the default.
func (v *formValues) request() dashboard.SetupRequest {
	return dashboard.SetupRequest{
		PlantName:       v.PlantName,
		Location:        v.Location,
		PlantType:       v.PlantType,
		SamplingSeconds: parseSeconds(v.Seconds),
	}
}

func parseSeconds(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// validateSeconds accepts blank (use the default) or a positive integer.
func validateSeconds(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New(errors.ErrInput, "Enter a whole number of seconds.", "")
	}
	return nil
}

func plantOptions(catalog []api.PlantProfile) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(catalog))
	for _, p := range catalog {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		opts = append(opts, huh.NewOption(name, p.ID))
	}
	return opts
}

func savedOptions(saved []api.SavedConfig) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(saved))
	for _, s := range saved {
		opts = append(opts, huh.NewOption(s.Label(), s.ID))
	}
	return opts
}

// plantFields are the fields shared by the setup overlay and the
// save-profile form.
func plantFields(v *formValues, catalog []api.PlantProfile) []huh.Field {
	fields := []huh.Field{
		huh.NewInput().
			Title("Plant name").
			Placeholder(dashboard.DefaultPlantName).
			Value(&v.PlantName),
		huh.NewInput().
			Title("Location").
			Placeholder(dashboard.DefaultLocation).
			Value(&v.Location),
	}
	if len(catalog) > 0 {
		fields = append(fields, huh.NewSelect[string]().
			Title("Plant type").
			Options(plantOptions(catalog)...).
			Value(&v.PlantType))
	} else {
		fields = append(fields, huh.NewInput().
			Title("Plant type").
			Placeholder(dashboard.DefaultPlantType).
			Value(&v.PlantType))
	}
	return append(fields, huh.NewInput().
		Title("Sampling interval (seconds)").
		Placeholder("60").
		Validate(validateSeconds).
		Value(&v.Seconds))
}

// newSetupForm builds the blocking overlay shown until a configuration is
// confirmed. With saved profiles it first asks which path to take.
func newSetupForm(v *formValues, catalog []api.PlantProfile, saved []api.SavedConfig) *huh.Form {
	var groups []*huh.Group

	if len(saved) > 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("How do you want to start?").
				Options(
					huh.NewOption("Set up a new plant", modeNew),
					huh.NewOption("Use a saved profile", modeSaved),
				).
				Value(&v.Mode),
		))
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Saved profile").
				Options(savedOptions(saved)...).
				Value(&v.SavedID),
		).WithHideFunc(func() bool { return v.Mode != modeSaved }))
	}

	groups = append(groups, huh.NewGroup(plantFields(v, catalog)...).
		Title("Set up your plant").
		WithHideFunc(func() bool { return v.Mode == modeSaved }))

	return embed(huh.NewForm(groups...))
}

// newIntervalForm asks for a new sampling interval.
func newIntervalForm(v *formValues) *huh.Form {
	return embed(huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Sampling interval (seconds)").
			Description("Blank means 60 seconds.").
			Validate(validateSeconds).
			Value(&v.Seconds),
	)))
}

// newActivateForm picks a saved profile to activate.
func newActivateForm(v *formValues, saved []api.SavedConfig) *huh.Form {
	return embed(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Activate a saved plant").
			Options(savedOptions(saved)...).
			Value(&v.SavedID),
	)))
}

// newProfileForm saves and activates a new named profile.
func newProfileForm(v *formValues, catalog []api.PlantProfile) *huh.Form {
	return embed(huh.NewForm(huh.NewGroup(plantFields(v, catalog)...).
		Title("Save a new plant profile")))
}

// embed configures a form for use inside the dashboard program: finishing
// or aborting it must not quit the whole program.
func embed(f *huh.Form) *huh.Form {
	f.SubmitCmd = nil
	f.CancelCmd = nil
	return f.WithShowHelp(true).WithWidth(56)
}
