package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/ui"
)

// setupCommand saves req as a new configuration and activates it. The
// plant type is checked against the catalog before anything is written.
func setupCommand(ctx context.Context, out io.Writer, req dashboard.SetupRequest, save bool) error {
	s, err := openSession(out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	if err := ui.Run(out, "Loading plant catalog", func() error { return ctrl.LoadCatalog(ctx) }); err != nil {
		return err
	}
	if req.PlantType != "" && !inCatalog(ctrl.Catalog(), req.PlantType) {
		return errors.New(errors.ErrInput,
			fmt.Sprintf("Unknown plant type '%s'", req.PlantType),
			"Pick one of: "+catalogIDs(ctrl.Catalog()))
	}
	ctrl.SelectPlantType(req.PlantType)

	submit := ctrl.SubmitSetup
	if save {
		submit = ctrl.SaveProfile
	}

	var conf *dashboard.Confirmation
	err = ui.Run(out, "Saving configuration", func() error {
		var err error
		conf, err = submit(ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	printConfirmation(out, conf, ctrl)
	if save {
		if table := savedTable(ctrl.SavedConfigs()); table != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, table)
		}
	}
	return nil
}

// profilesCommand lists the saved configurations.
func profilesCommand(ctx context.Context, out io.Writer, asJSON bool) error {
	s, err := openSession(out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	if err := ctrl.LoadSavedConfigs(ctx); err != nil {
		if asJSON {
			return writeJSONFailure(out, err)
		}
		return err
	}
	saved := ctrl.SavedConfigs()

	if asJSON {
		return WriteJSONSuccess(out, profilesOutput(saved))
	}
	if len(saved) == 0 {
		fmt.Fprintln(out, ui.MutedStyle().Render("No saved profiles yet. Create one with: plantdash setup --save"))
		return nil
	}
	fmt.Fprintln(out, savedTable(saved))
	return nil
}

// activateCommand makes a saved configuration the active one.
func activateCommand(ctx context.Context, out io.Writer, id string) error {
	s, err := openSession(out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	// The catalog lets the confirmation resolve the plant's ranges.
	if err := ctrl.LoadCatalog(ctx); err != nil {
		s.log.Warn("catalog unavailable, ranges fall back to defaults: %v", err)
	}

	var conf *dashboard.Confirmation
	err = ui.Run(out, "Activating "+id, func() error {
		var err error
		conf, err = ctrl.ActivateSaved(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	printConfirmation(out, conf, ctrl)
	return nil
}

// intervalCommand changes the sampling interval, keeping everything else
// of the active configuration.
func intervalCommand(ctx context.Context, out io.Writer, seconds int) error {
	s, err := openSession(out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctrl := s.controller()
	if err := ctrl.LoadActiveConfig(ctx); err != nil {
		return err
	}

	var conf *dashboard.Confirmation
	err = ui.Run(out, fmt.Sprintf("Setting sampling interval to %ds", seconds), func() error {
		var err error
		conf, err = ctrl.UpdateSampling(ctx, seconds)
		return err
	})
	if err != nil {
		return err
	}
	printConfirmation(out, conf, ctrl)
	return nil
}

func printConfirmation(out io.Writer, conf *dashboard.Confirmation, ctrl *dashboard.Controller) {
	fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), conf.Status)
	fmt.Fprintf(out, "  %s, sampling every %ds\n", ctrl.ActiveInfo(), ctrl.SamplingSeconds())
	if conf.Config.PlantConfigID != "" {
		fmt.Fprintln(out, ui.MutedStyle().Render("  id "+conf.Config.PlantConfigID))
	}
}

func savedTable(saved []api.SavedConfig) string {
	rows := make([][]string, 0, len(saved))
	for _, c := range saved {
		rows = append(rows, []string{c.ID, c.Label(), c.PlantType, strconv.Itoa(c.SamplingSeconds) + "s"})
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "ID", Width: 36},
		{Title: "Plant", Width: 28},
		{Title: "Type", Width: 24},
		{Title: "Sampling", Width: 9},
	}, rows)
}

// profileOutput is one saved configuration in --json output.
type profileOutput struct {
	ID              string `json:"id"`
	PlantName       string `json:"plant_name"`
	Location        string `json:"location"`
	PlantType       string `json:"plant_type"`
	SamplingSeconds int    `json:"sampling_seconds"`
}

func profilesOutput(saved []api.SavedConfig) []profileOutput {
	out := make([]profileOutput, 0, len(saved))
	for _, c := range saved {
		out = append(out, profileOutput{
			ID:              c.ID,
			PlantName:       c.PlantName,
			Location:        c.Location,
			PlantType:       c.PlantType,
			SamplingSeconds: c.SamplingSeconds,
		})
	}
	return out
}

// writeJSONFailure reports err as a JSON envelope and still fails the
// command, without printing the error a second time.
func writeJSONFailure(out io.Writer, err error) error {
	if werr := WriteJSONFromError(out, err); werr != nil {
		return werr
	}
	return errSilent
}

func inCatalog(catalog []api.PlantProfile, id string) bool {
	for _, p := range catalog {
		if p.ID == id {
			return true
		}
	}
	return false
}

func catalogIDs(catalog []api.PlantProfile) string {
	ids := make([]string, 0, len(catalog))
	for _, p := range catalog {
		ids = append(ids, p.ID)
	}
	return strings.Join(ids, ", ")
}
