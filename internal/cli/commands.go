package cli

import (
	"os"
	"time"

	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	setupName     string
	setupLocation string
	setupType     string
	setupSeconds  int
	setupSave     bool
	profilesJSON  bool
	watchCount    int
	watchInterval time.Duration
	initForce     bool
	fakeAddr      string
	fakeInterval  time.Duration
	fakeBackfill  int
	fakeDropRate  float64
	fakeAccessLog bool
)

// dashboardCmd is the explicit form of the root command.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Open the full-screen dashboard: metric cards, recommendations, history
charts, the plant profile and the configuration view.

The setup overlay opens first, prefilled from the backend's active
configuration. Polling starts once a configuration is confirmed.

Examples:
  plantdash dashboard
  plantdash dashboard --config ~/plants/.plantdash.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

// setupCmd configures and activates a plant without the TUI
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Save and activate a plant configuration",
	Long: `Save a new plant configuration and make it the device's active one.

The plant type must be one of the ids listed by the backend catalog.
A missing or non-positive --seconds uses the 60 second default.

Examples:
  plantdash setup --name Basil --type ocimum-basilicum
  plantdash setup --name Fern --location Bathroom --type nephrolepis-exaltata --seconds 30
  plantdash setup --name Fig --type ficus-lyrata --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := dashboard.SetupRequest{
			PlantName:       setupName,
			Location:        setupLocation,
			PlantType:       setupType,
			SamplingSeconds: setupSeconds,
		}
		return setupCommand(cmd.Context(), cmd.OutOrStdout(), req, setupSave)
	},
}

// profilesCmd lists saved configurations
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved plant configurations",
	Long: `List the plant configurations saved on the backend.

Examples:
  plantdash profiles
  plantdash profiles --json
  plantdash profiles activate 3f1c9a2e-...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return profilesCommand(cmd.Context(), cmd.OutOrStdout(), profilesJSON)
	},
}

// profilesActivateCmd reactivates a saved configuration
var profilesActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a saved configuration the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return activateCommand(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

// intervalCmd changes the device sampling interval
var intervalCmd = &cobra.Command{
	Use:   "interval <seconds>",
	Short: "Change the device sampling interval",
	Long: `Change how often the device takes a reading. Plant name, location and
type of the active configuration are kept.

Examples:
  plantdash interval 30
  plantdash interval 300`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := parseSeconds(args[0])
		if err != nil {
			return err
		}
		return intervalCommand(cmd.Context(), cmd.OutOrStdout(), seconds)
	},
}

// watchCmd prints one status line per poll
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the backend and print a status line per cycle",
	Long: `Run the reconciliation loop without the TUI. Each cycle prints the
connectivity, the three readings with their classification, and a
sparkline per metric.

This is what "plantdash" falls back to when stdout is not a terminal.

Examples:
  plantdash watch
  plantdash watch --interval 5s --count 3
  plantdash watch > plant.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(cmd.Context(), cmd.OutOrStdout(), watchOptions{
			Interval: watchInterval,
			Count:    watchCount,
		})
	},
}

// initCmd creates a new .plantdash.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .plantdash.yaml configuration",
	Long: `Write a .plantdash.yaml with the default settings to the current
directory.

Examples:
  plantdash init
  plantdash init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd.OutOrStdout(), ".", initForce)
	},
}

// configCmd groups config file edits
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change the configuration file",
}

// configSetCmd updates one key in place
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a dotted key in the config file, keeping its comments and layout.

Examples:
  plantdash config set api.base_url http://raspberrypi.local:5000/api
  plantdash config set poll.interval 30s
  plantdash config set thresholds.temperature.max 26`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

// fakeBackendCmd serves the in-memory backend for local development
var fakeBackendCmd = &cobra.Command{
	Use:   "fake-backend",
	Short: "Serve an in-memory plant backend with simulated readings",
	Long: `Serve the plant API from memory, fed by a simulated sensor. Useful for
trying the dashboard without a device.

Examples:
  plantdash fake-backend
  plantdash fake-backend --addr :5050 --interval 5s --drop-rate 0.1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fakeBackendCommand(cmd.Context(), cmd.OutOrStdout(), fakeBackendOptions{
			Addr:      fakeAddr,
			Interval:  fakeInterval,
			Backfill:  fakeBackfill,
			DropRate:  fakeDropRate,
			AccessLog: accessLogWriter(fakeAccessLog, cmd.ErrOrStderr()),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for plantdash.

Examples:
  # Bash
  plantdash completion bash > /etc/bash_completion.d/plantdash

  # Zsh
  plantdash completion zsh > "${fpath[1]}/_plantdash"

  # Fish
  plantdash completion fish > ~/.config/fish/completions/plantdash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrInput,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// setup command flags
	setupCmd.Flags().StringVar(&setupName, "name", dashboard.DefaultPlantName, "plant name")
	setupCmd.Flags().StringVar(&setupLocation, "location", dashboard.DefaultLocation, "where the plant lives")
	setupCmd.Flags().StringVar(&setupType, "type", "", "plant type id from the catalog")
	setupCmd.Flags().IntVar(&setupSeconds, "seconds", 0, "sampling interval in seconds (default 60)")
	setupCmd.Flags().BoolVar(&setupSave, "save", false, "also refresh and list the saved profiles")

	// profiles command flags
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "output in JSON format")
	profilesCmd.AddCommand(profilesActivateCmd)

	// watch command flags
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "stop after this many cycles (0 runs until interrupted)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between cycles (default: poll.interval)")

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")

	configCmd.AddCommand(configSetCmd)

	// fake-backend command flags
	fakeBackendCmd.Flags().StringVar(&fakeAddr, "addr", ":5000", "listen address")
	fakeBackendCmd.Flags().DurationVar(&fakeInterval, "interval", 10*time.Second, "time between simulated readings")
	fakeBackendCmd.Flags().IntVar(&fakeBackfill, "backfill", 24, "readings to seed before serving")
	fakeBackendCmd.Flags().Float64Var(&fakeDropRate, "drop-rate", 0, "chance (0-1) that a reading has no temperature or humidity")
	fakeBackendCmd.Flags().BoolVar(&fakeAccessLog, "access-log", false, "print an access log line per request to stderr")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(intervalCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(fakeBackendCmd)
	rootCmd.AddCommand(completionCmd)
}
