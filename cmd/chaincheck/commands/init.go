package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/internal/cli/prompt"
	"github.com/thoreinstein/chaincheck/internal/config"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/paths"
	"github.com/thoreinstein/chaincheck/pkg/fileutil"
)

var (
	initYes      bool
	initForce    bool
	initRulesDir string
	initExample  bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Non-interactive mode, accept all defaults")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().StringVar(&initRulesDir, "rules-dir", "", "Directory holding named rule sets")
	initCmd.Flags().BoolVar(&initExample, "example", true, "Write an example rule set to the rules directory")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chaincheck configuration",
	Long: `Create the chaincheck configuration file and rules directory.

Writes ~/.config/chaincheck/config.yaml (or $CHAINCHECK_CONFIG_DIR/config.yaml,
or the --config path) and, unless --example=false, an example rule set.`,
	Example: `  # Initialize with a confirmation prompt
  chaincheck init

  # Initialize non-interactively with a custom rules directory
  chaincheck init --yes --rules-dir ~/rules

  # Overwrite an existing configuration
  chaincheck init --force

  See Also: chaincheck config, chaincheck rules list`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runInit,
}

// exampleRuleSet is written to the rules directory by init.
const exampleRuleSet = `name: signup
description: Example sign-up form checks
fields:
  - field: email
    rules:
      - type: exist
      - type: email
        maxLen: 254
  - field: age
    rules:
      - type: exist
      - type: number
        minLen: 13
        maxLen: 130
  - field: password
    rules:
      - type: exist
      - minLen: 8
        msg: Password must be at least 8 characters.
      - type: match
        matches:
          pattern: '\s'
          inverted: true
        msg: Password must not contain whitespace.
`

func runInit(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	configPath := configFile
	if configPath == "" {
		configPath = paths.ConfigFile()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	cfg := config.Default()
	cfg.RulesDir = initRulesDir
	rulesDir := cfg.RulesPath()

	if !initYes {
		fmt.Fprintln(w, "This will create:")
		fmt.Fprintf(w, "  %s\n", configPath)
		fmt.Fprintf(w, "  %s/\n", rulesDir)
		if initExample {
			fmt.Fprintf(w, "  %s\n", filepath.Join(rulesDir, "signup.yaml"))
		}
		fmt.Fprintln(w)

		if !prompt.NewSelectorWithIO(cmd.InOrStdin(), w).Confirm("Proceed?") {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	if err := config.Save(cfg, configPath); err != nil {
		return errors.NewSystemError(err, "Check permissions on "+filepath.Dir(configPath))
	}
	fmt.Fprintf(w, "Created %s\n", configPath)

	if err := paths.EnsureDir(rulesDir, 0); err != nil {
		return errors.NewSystemError(err, "")
	}

	if initExample {
		example := filepath.Join(rulesDir, "signup.yaml")
		if _, err := os.Stat(example); err == nil {
			fmt.Fprintf(w, "Kept existing %s\n", example)
			return nil
		}
		if err := fileutil.AtomicWriteFile(example, []byte(exampleRuleSet), 0o644); err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(w, "Created %s\n", example)
	}

	return nil
}
