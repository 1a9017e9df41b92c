package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/gridwalk/internal/app"
	"github.com/specialistvlad/gridwalk/internal/walk"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError wraps a validation failure with the conventional usage exit code.
func usageError(msg string) *ExitError {
	return &ExitError{Code: 2, Message: msg}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridwalk", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridwalk - build neighbor graphs from grid files and walk shortest paths.

Usage:
  gridwalk [options] [GRID_PATH]

Arguments:
  GRID_PATH
    Path to a single .hcl/.yaml/.yml file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	gridFlag := flagSet.String("grid", "", "Path to the grid file or directory.")
	gFlag := flagSet.String("g", "", "Path to the grid file or directory (shorthand).")
	walkFlag := flagSet.String("walk", "", "Run only the named walk. Empty runs all walks.")
	stepDelayFlag := flagSet.Duration("step-delay", walk.DefaultStepDelay, "Pause between two steps of a walk.")
	maxExpansionsFlag := flagSet.Int("max-expansions", 0, "Upper bound on nodes expanded per path search. 0 is unbounded.")
	seedFlag := flagSet.Uint64("seed", 0, "Seed for random start and goal placement. 0 picks a time based seed.")
	httpPortFlag := flagSet.Int("http-port", 0, "Port for the /health and /path HTTP API. 0 is disabled.")
	watchFlag := flagSet.Bool("watch", false, "Rebuild grids when their files change. Requires -http-port.")
	eventsURLFlag := flagSet.String("events-url", "", "socket.io server that receives walk events, e.g. http://localhost:3000.")
	eventsNamespaceFlag := flagSet.String("events-namespace", "", "socket.io namespace for walk events.")
	eventsInsecureFlag := flagSet.Bool("events-insecure", false, "Skip TLS certificate verification for -events-url.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError(err.Error())
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *gridFlag != "" {
		path = *gridFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Grid path determined.", "path", path)

	if path == "" {
		slog.Debug("No grid path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GridPath:        path,
		Walk:            *walkFlag,
		StepDelay:       *stepDelayFlag,
		MaxExpansions:   *maxExpansionsFlag,
		Seed:            *seedFlag,
		HTTPPort:        *httpPortFlag,
		Watch:           *watchFlag,
		EventsURL:       *eventsURLFlag,
		EventsNamespace: *eventsNamespaceFlag,
		EventsInsecure:  *eventsInsecureFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, usageError(err.Error())
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
