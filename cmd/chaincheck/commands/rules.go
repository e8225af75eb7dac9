package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/internal/editor"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/internal/validator"
)

var (
	rulesListJSON  bool
	rulesLintJSON  bool
	rulesShowAs    string
	rulesEditValid bool
)

func init() {
	rulesListCmd.Flags().BoolVar(&rulesListJSON, "json", false, "Output in JSON format")
	rulesLintCmd.Flags().BoolVar(&rulesLintJSON, "json", false, "Output in JSON format")
	rulesShowCmd.Flags().StringVar(&rulesShowAs, "format", "yaml", "output format: yaml, json, toml")
	rulesEditCmd.Flags().BoolVar(&rulesEditValid, "lint", true, "lint the rule set after the editor exits")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesLintCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesEditCmd)
	rootCmd.AddCommand(rulesCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage rule sets",
	Long: `List, lint, show and edit rule sets.

Rule sets are YAML, TOML or JSON files with a name, an optional
description and an ordered list of fields, each with its rule chain.
Named rule sets live in the rules directory (see 'chaincheck config').`,
	Example: `  # List rule sets in the rules directory
  chaincheck rules list

  # Check a rule set for mistakes
  chaincheck rules lint signup.yaml

  # Print a rule set as TOML
  chaincheck rules show signup.yaml --format toml`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rule sets in the rules directory",
	Long: `List every rule set found in the rules directory.

Files that fail to load are listed with their error.`,
	Example: `  chaincheck rules list
  chaincheck rules list --json`,
	Args: cobra.NoArgs,
	RunE: runRulesList,
}

var rulesLintCmd = &cobra.Command{
	Use:   "lint <file...>",
	Short: "Check rule sets for mistakes",
	Long: `Load and compile each rule set, reporting every problem found.

Errors (bad patterns, inverted bounds, unknown fields) make the command
exit with status 1. Warnings and notes are informational.`,
	Example: `  chaincheck rules lint signup.yaml
  chaincheck rules lint rules/*.yaml --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRulesLint,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a rule set in normalized form",
	Example: `  chaincheck rules show signup.json
  chaincheck rules show signup.yaml --format toml`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesShow,
}

var rulesEditCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Open a rule set in $EDITOR",
	Long: `Open a rule set in your editor, then lint it.

Uses $EDITOR, falling back to $VISUAL, nano and vi.`,
	Example: `  chaincheck rules edit signup.yaml
  EDITOR="code --wait" chaincheck rules edit signup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesEdit,
}

// ruleSetInfoJSON represents a rule set in list JSON output.
type ruleSetInfoJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	Fields      int    `json:"fields"`
	Error       string `json:"error,omitempty"`
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	dir := currentConfig().RulesPath()
	entries, err := ruleset.Discover(dir)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	w := cmd.OutOrStdout()
	if rulesListJSON {
		return outputRuleSetsJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(w, "No rule sets in %s\n", dir)
		return nil
	}
	return outputRuleSetsTabular(w, entries)
}

func outputRuleSetsJSON(w io.Writer, entries []ruleset.Entry) error {
	infos := make([]ruleSetInfoJSON, len(entries))
	for i, e := range entries {
		infos[i] = ruleSetInfoJSON{
			Name:        e.Name,
			Description: e.Description,
			Path:        e.Path,
			Fields:      e.Fields,
		}
		if e.Err != nil {
			infos[i].Error = e.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(infos), "encoding JSON")
}

func outputRuleSetsTabular(w io.Writer, entries []ruleset.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFIELDS\tDESCRIPTION")
	for _, e := range entries {
		desc := truncate(e.Description, 60)
		fields := fmt.Sprint(e.Fields)
		if e.Err != nil {
			fields = "-"
			desc = "invalid: " + truncate(e.Err.Error(), 51)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, fields, desc)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}

func runRulesLint(cmd *cobra.Command, args []string) error {
	format := validator.FormatText
	if rulesLintJSON {
		format = validator.FormatJSON
	}
	reporter := validator.NewReporter(cmd.OutOrStdout(), format)

	failed := 0
	for _, path := range args {
		result := lintFile(path)
		if result.HasErrors() {
			failed++
		}
		if err := reporter.Report(result); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidRuleSet, "%d of %d rule set(s) failed lint", failed, len(args)),
			"",
		)
	}
	return nil
}

// lintFile loads and lints one rule set; load failures become an error issue.
func lintFile(path string) *validator.Result {
	rs, err := ruleset.Load(path)
	if err != nil {
		res := &validator.Result{RuleSet: path}
		res.AddError("", err.Error())
		return res
	}
	return validator.Lint(rs)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	rs, err := ruleset.Load(args[0])
	if err != nil {
		return errors.NewUserError(err, "")
	}
	if err := rs.Encode(cmd.OutOrStdout(), ruleset.Format(rulesShowAs)); err != nil {
		return errors.NewUserError(err, "Use --format yaml, json or toml")
	}
	return nil
}

func runRulesEdit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "rule set %s", path), "")
	}

	if err := editor.Open(cmd.ErrOrStderr(), path); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your preferred editor")
	}

	if !rulesEditValid {
		return nil
	}
	return runRulesLint(cmd, []string{path})
}
