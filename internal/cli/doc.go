// Package cli implements the plantdash command-line interface.
//
// Each cobra command delegates to a xxxCommand function that takes the
// command's context and output writer, so the logic can be driven from
// tests without going through flag parsing.
//
// # Command Structure
//
// The root command opens the dashboard. Subcommands cover scripted use:
//
//	plantdash                    - Interactive dashboard (watch when piped)
//	plantdash setup              - Save and activate a plant configuration
//	plantdash profiles [activate]- List or reactivate saved configurations
//	plantdash interval <seconds> - Change the sampling interval
//	plantdash watch              - Headless polling loop
//	plantdash doctor             - Diagnose config and backend problems
//	plantdash init               - Create .plantdash.yaml
//	plantdash config set         - Edit one config key in place
//	plantdash fake-backend       - Serve a simulated backend
//
// # Sessions
//
// Backend-facing commands open a session: .env and the config file are
// loaded and validated, the log file is opened and an API client is built.
// doctor is the exception, since a broken config is one of the things it
// reports.
//
// # Flag Handling
//
// Global flags (--config, --log-file, --verbose, --no-color) are defined on
// the root command and available to all subcommands.
package cli
