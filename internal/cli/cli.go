package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/patchbay/internal/config"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags override values loaded from the --config file.
func Parse(args []string, output io.Writer) (*config.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("patchbay", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Patchbay - a process-wide export board for live object wiring.

Usage:
  patchbay [options] [MANIFEST_PATH ...]

Arguments:
  MANIFEST_PATH
    Path to a service manifest .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a host config file (.yaml or .json).")
	cFlag := flagSet.String("c", "", "Path to a host config file (shorthand).")
	manifestFlag := flagSet.String("manifest", "", "Path to a service manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to a service manifest file or directory (shorthand).")
	healthPortFlag := flagSet.Int("health-port", -1, "Port for the HTTP introspection server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configPath := *configFlag
	if configPath == "" {
		configPath = *cFlag
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.FromFile(configPath)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
		slog.Debug("Host config file loaded.", "path", configPath)
	}

	// Flags left at their sentinel defaults keep the file's values.
	if *logFormatFlag != "" {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if *healthPortFlag >= 0 {
		cfg.HealthPort = *healthPortFlag
	}

	if *manifestFlag != "" {
		cfg.ManifestPaths = append(cfg.ManifestPaths, *manifestFlag)
	} else if *mFlag != "" {
		cfg.ManifestPaths = append(cfg.ManifestPaths, *mFlag)
	}
	cfg.ManifestPaths = append(cfg.ManifestPaths, flagSet.Args()...)
	slog.Debug("Manifest paths determined.", "paths", cfg.ManifestPaths)

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
