package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const signupRules = `name: signup
description: New account form
fields:
  - field: email
    rules:
      - type: exist
      - type: email
  - field: age
    rules:
      - type: exist
      - type: number
        minLen: 13
`

const usersJSON = `[
  {"email": "ada@example.com", "age": 36},
  {"email": "not-an-email", "age": 40},
  {"email": "kid@example.com", "age": 9}
]`

const validUsersJSON = `[
  {"email": "ada@example.com", "age": 36},
  {"email": "grace@example.com", "age": 85}
]`

// cmdResult holds the output of one command execution.
type cmdResult struct {
	stdout string
	stderr string
	err    error
}

// resetFlags restores every flag to its default and drops the context
// left by a previous execution.
func resetFlags(c *cobra.Command) {
	c.SetContext(nil) //nolint:staticcheck // nil lets the next execution inherit the root context

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points the config directory at a temporary directory and returns it.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("CHAINCHECK_CONFIG_DIR", dir)
	t.Setenv("CHAINCHECK_DEBUG", "")
	return dir
}

// executeCommand runs the root command with args and stdin, capturing output.
func executeCommand(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()

	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	resetFlags(rootCmd)
	loadedConfig, configLoadErr = nil, nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		// nil args make cobra fall back to os.Args
		args = []string{}
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return cmdResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
