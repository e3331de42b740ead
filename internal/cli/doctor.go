package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/config"
	"github.com/rileyhilliard/plantdash/internal/doctor"
	"github.com/rileyhilliard/plantdash/internal/ui"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

// doctorCmd diagnoses config, backend and device problems
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and backend problems",
	Long: `Run diagnostic checks: the config file and its values, the log file,
backend reachability, the plant catalog, the active configuration and how
fresh the newest reading is.

Exits non-zero when any check fails.

Examples:
  plantdash doctor
  plantdash doctor --fix
  plantdash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout(), doctorJSON, doctorFix)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic. It does not go
// through openSession: a broken config is something to report, not a
// reason to stop.
func doctorCommand(ctx context.Context, out io.Writer, asJSON, fix bool) error {
	config.LoadDotEnv(".")

	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil || cfg == nil {
		cfg = config.DefaultConfig()
	}
	client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(doctorTimeout(cfg)))

	checks := collectChecks(client, logPath(cfg))
	results := doctor.RunAllParallel(ctx, checks)

	if fix {
		results = attemptFixes(ctx, checks, results)
	}

	if asJSON {
		if err := outputDoctorJSON(out, results); err != nil {
			return err
		}
	} else {
		outputDoctorText(out, results, fix)
	}

	if doctor.HasFailures(results) {
		return errSilent
	}
	return nil
}

// collectChecks gathers every diagnostic in display order.
func collectChecks(client *api.Client, logFile string) []doctor.Check {
	return []doctor.Check{
		&doctor.ConfigFileCheck{ConfigPath: cfgFile},
		&doctor.ConfigSchemaCheck{ConfigPath: cfgFile},
		&doctor.LogFileCheck{Path: logFile},
		&doctor.BackendHealthCheck{Backend: client, BaseURL: client.BaseURL()},
		&doctor.CatalogCheck{Backend: client},
		&doctor.ActiveConfigCheck{Backend: client},
		&doctor.TelemetryCheck{Backend: client},
	}
}

// doctorTimeout keeps an unreachable backend from hanging the report.
func doctorTimeout(cfg *config.Config) time.Duration {
	if cfg.API.Timeout > 0 {
		return cfg.API.Timeout
	}
	return DoctorTimeout
}

// DoctorTimeout bounds each backend probe when api.timeout is unset.
const DoctorTimeout = 5 * time.Second

// attemptFixes tries to fix issues where possible.
func attemptFixes(ctx context.Context, checks []doctor.Check, results []doctor.CheckResult) []doctor.CheckResult {
	for i, result := range results {
		if result.Fixable && (result.Status == doctor.StatusFail || result.Status == doctor.StatusWarn) {
			if err := checks[i].Fix(); err == nil {
				// Re-run the check to see if it's fixed
				rerun := checks[i].Run(ctx)
				rerun.Name, rerun.Category = result.Name, result.Category
				results[i] = rerun
			}
		}
	}
	return results
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, results []doctor.CheckResult) error {
	grouped := make(map[string][]doctor.CheckResult)
	var categoryOrder []string
	for _, r := range results {
		if _, exists := grouped[r.Category]; !exists {
			categoryOrder = append(categoryOrder, r.Category)
		}
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	output := DoctorOutput{
		Categories: make([]CategoryOutput, 0, len(categoryOrder)),
	}
	for _, cat := range categoryOrder {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		Fixable:  doctor.FixableCount(results),
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, results []doctor.CheckResult, fixed bool) {
	headerStyle := ui.AccentStyle()

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("plantdash diagnostic report"))
	fmt.Fprintln(w)

	rows := make([]ui.DoctorCheckRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.DoctorCheckRow{
			Status:     r.Status.String(),
			Category:   r.Category,
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	fmt.Fprint(w, ui.RenderDoctorTable(rows))

	fmt.Fprintln(w, strings.Repeat("━", ui.HeaderWidth))
	fmt.Fprintln(w)

	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), "Everything looks good")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
	if doctor.FixableCount(results) > 0 && !fixed {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Run with %s to attempt automatic fixes where possible.\n",
			ui.MutedStyle().Render("--fix"))
	}
	fmt.Fprintln(w)
}
