package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/logging"
)

// saveLoggingFlags restores the logging flag variables after the test.
func saveLoggingFlags(t *testing.T) {
	t.Helper()

	origVerbosity, origQuiet, origFormat, origFile := verbosity, quiet, logFormat, logFile
	origLogger := slog.Default()
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile = origVerbosity, origQuiet, origFormat, origFile
		slog.SetDefault(origLogger)
	})
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	saveLoggingFlags(t)
	t.Setenv(debugEnv, "")
	logFormat = "text"

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
			if logging.FromContext(rootCmd.Context()) != logger {
				t.Error("expected the logger to be stored in the command context")
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	saveLoggingFlags(t)
	logFormat = "text"

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"CHAINCHECK_DEBUG=1", "1", slog.LevelDebug},
		{"CHAINCHECK_DEBUG=true", "true", slog.LevelDebug},
		{"CHAINCHECK_DEBUG=2", "2", logging.LevelTrace},
		{"CHAINCHECK_DEBUG=0", "0", slog.LevelWarn},
		{"CHAINCHECK_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv(debugEnv, tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel == slog.LevelDebug && logger.Enabled(t.Context(), logging.LevelTrace) {
				t.Error("expected Trace level to be disabled when CHAINCHECK_DEBUG=1")
			}
		})
	}
}

func TestSetupLogging_Errors(t *testing.T) {
	saveLoggingFlags(t)

	verbosity, quiet, logFormat = 1, true, "text"
	if err := setupLogging(rootCmd); err == nil {
		t.Error("expected an error for --quiet with --verbose")
	}

	verbosity, quiet, logFormat = 0, false, "xml"
	err := setupLogging(rootCmd)
	if code := errors.ExitCode(err); code != errors.ExitUser {
		t.Errorf("exit code = %d, want %d for an unknown log format (%v)", code, errors.ExitUser, err)
	}
}

func TestSetupLogging_LogFile(t *testing.T) {
	saveLoggingFlags(t)
	t.Setenv(debugEnv, "")

	verbosity, quiet, logFormat = 1, false, "json"
	logFile = filepath.Join(t.TempDir(), "chaincheck.log")
	if err := setupLogging(rootCmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}

	slog.Info("checking records", "records", 3)

	got := readFile(t, logFile)
	if !strings.Contains(got, `"msg":"checking records"`) || !strings.Contains(got, `"records":3`) {
		t.Errorf("log file = %q, want JSON record", got)
	}
}

func TestCheckConfig(t *testing.T) {
	origErr := configLoadErr
	t.Cleanup(func() { configLoadErr = origErr })
	configLoadErr = errors.Mark(errors.New("bad config"), errors.ErrInvalidConfig)

	parent := &cobra.Command{Use: "parent", Annotations: map[string]string{skipConfigAnnotation: "true"}}
	child := &cobra.Command{Use: "child"}
	parent.AddCommand(child)
	plain := &cobra.Command{Use: "plain"}
	help := &cobra.Command{Use: "help"}

	tests := []struct {
		name    string
		cmd     *cobra.Command
		wantErr bool
	}{
		{"plain command", plain, true},
		{"help", help, false},
		{"annotated", parent, false},
		{"annotated ancestor", child, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkConfig(tt.cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with suggestion",
			err:  errors.NewUserError(errors.New("no rule set given"), "Pass --rules <file>"),
			want: "Error: no rule set given\nPass --rules <file>\n",
		},
		{
			name: "plain error",
			err:  errors.New("disk full"),
			want: "Error: disk full\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)
			if buf.String() != tt.want {
				t.Errorf("PrintError() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestRootHelp(t *testing.T) {
	isolate(t)

	res := executeCommand(t, "")
	if res.err != nil {
		t.Fatalf("root command failed: %v", res.err)
	}
	for _, sub := range []string{"check", "rules", "config", "init", "doctor", "version"} {
		if !strings.Contains(res.stdout, sub) {
			t.Errorf("help missing %q", sub)
		}
	}
}

func TestMain(m *testing.M) {
	// Keep the user's real config out of every test.
	dir, err := os.MkdirTemp("", "chaincheck-commands")
	if err != nil {
		panic(err)
	}
	os.Setenv("CHAINCHECK_CONFIG_DIR", dir)

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}
