// Package commands implements the CLI commands for chaincheck.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/cmd"
	"github.com/thoreinstein/chaincheck/internal/config"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/logging"
)

// skipConfigAnnotation marks commands that must run even when the config
// file fails to load, so the user can repair it.
const skipConfigAnnotation = "chaincheck/skip-config"

// debugEnv enables debug (1, true) or trace (2) logging when no -v is given.
const debugEnv = "CHAINCHECK_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// loadedConfig is the configuration loaded at startup.
var loadedConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default $XDG_CONFIG_HOME/chaincheck/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("chaincheck version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "chaincheck",
	Short: "Validate structured records against declarative rule chains",
	Long: `chaincheck validates JSON, YAML and TOML records against rule sets.

A rule set lists, per field, an ordered chain of checks: exist, string,
email, number and match. Rules run in order and the first failure stops
the chain, so every invalid record reports exactly one problem: the
field, the message and the position of the failing rule.`,
	Example: `  # Create the default configuration
  chaincheck init

  # Validate records against a rule set
  chaincheck check users.json --rules signup.yaml

  # Pick a rule set from the rules directory
  chaincheck check users.yaml --interactive

  # Check a rule set for mistakes
  chaincheck rules lint signup.yaml

  See Also: chaincheck rules, chaincheck config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags and
// stores it in the command context.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat), "Use --log-format text or json")
	}

	var fileHandlers []slog.Handler
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		fileHandlers = append(fileHandlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	logger := slog.New(logging.Tee(primaryHandler, fileHandlers...))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports a config load failure unless the command is
// annotated to run without a valid configuration.
func checkConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return nil
		}
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// currentConfig returns the loaded configuration, or defaults when loading
// failed or has not happened.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.Default()
	}
	return loadedConfig
}

// PrintError writes err and any suggestion it carries to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "%s\n", color.YellowString(exitErr.Suggestion))
	}
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands use for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
