package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/plantdash/internal/api"
	"github.com/rileyhilliard/plantdash/internal/config"
	"github.com/rileyhilliard/plantdash/internal/dashboard"
	"github.com/rileyhilliard/plantdash/internal/errors"
	"github.com/rileyhilliard/plantdash/internal/health"
	"github.com/rileyhilliard/plantdash/internal/logger"
	"github.com/rileyhilliard/plantdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile     string
	logFileFlag string
	verbose     bool
	noColor     bool
)

// rootCmd opens the dashboard when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "plantdash",
	Short: "Terminal dashboard for a smart plant sensor",
	Long: `plantdash polls a smart-plant backend and shows live temperature,
humidity and light readings, classified against the plant's ideal ranges.

Run without arguments to open the interactive dashboard. When stdout is not
a terminal it prints one status line per poll instead (see "plantdash watch").

Examples:
  plantdash
  plantdash setup --name Basil --location Kitchen --type ocimum-basilicum
  plantdash doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: nearest "+config.ConfigFileName+")")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "diagnostic log file (default: ~/.plantdash/plantdash.log)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug entries to the log file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command. Interrupts cancel the command's context so
// polling loops and in-flight requests wind down before exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if err != errSilent {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// errSilent fails a command whose output already reported the problem.
var errSilent = stderrors.New("silent failure")

// printError writes err the way structured errors format themselves,
// adding the failure glyph to plain ones.
func printError(w io.Writer, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, ui.ErrorStyle().Render(strings.TrimRight(e.Error(), "\n"))+"\n")
		return
	}
	fmt.Fprintln(w, ui.ErrorStyle().Render(ui.SymbolFail+" "+err.Error()))
}

// session is what every backend-facing command needs: the loaded config,
// a log sink and an API client.
type session struct {
	cfg      *config.Config
	cfgPath  string
	log      logger.Logger
	client   *api.Client
	closeLog func() error
}

// openSession loads .env and the config file, opens the log file and
// builds the API client. A log file that cannot be opened is a warning,
// not a failure.
func openSession(warn io.Writer) (*session, error) {
	config.LoadDotEnv(".")

	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Output.Color == "never" {
		ui.DisableColors()
	}

	s := &session{cfg: cfg, cfgPath: path, closeLog: func() error { return nil }}

	log, closeFn, err := logger.NewFileLogger(logPath(cfg), "plantdash", verbose || cfg.Log.Debug)
	if err != nil {
		ui.PrintWarning(warn, fmt.Sprintf("Logging disabled: %v", err))
		log = logger.Noop()
	} else {
		s.closeLog = closeFn
	}
	s.log = log
	logger.SetDefault(log)

	s.client = api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	)
	if path != "" {
		log.Debug("loaded config from %s", path)
	}
	return s, nil
}

// Close flushes the log file.
func (s *session) Close() {
	if s == nil || s.closeLog == nil {
		return
	}
	_ = s.closeLog()
}

// controller builds a Controller honoring the configured window size and
// fallback ranges.
func (s *session) controller() *dashboard.Controller {
	return dashboard.NewController(s.client,
		dashboard.WithLimit(s.cfg.Poll.Limit),
		dashboard.WithFallbacks(fallbacks(s.cfg.Thresholds)),
		dashboard.WithLogger(s.log),
	)
}

// logPath picks --log-file, then log.file, then the default location.
func logPath(cfg *config.Config) string {
	if logFileFlag != "" {
		return logFileFlag
	}
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return config.DefaultLogFile()
}

// fallbacks overlays the configured ranges on the built-in defaults.
func fallbacks(t config.ThresholdsConfig) health.Fallbacks {
	f := health.DefaultFallbacks()
	if t.Temperature != nil {
		f.Temperature = api.Range{Min: t.Temperature.Min, Max: t.Temperature.Max}
	}
	if t.Humidity != nil {
		f.Humidity = api.Range{Min: t.Humidity.Min, Max: t.Humidity.Max}
	}
	return f
}
