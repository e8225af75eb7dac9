package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/internal/config"
	"github.com/thoreinstein/chaincheck/internal/engine"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/logging"
	"github.com/thoreinstein/chaincheck/internal/record"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/internal/validator"
	"github.com/thoreinstein/chaincheck/pkg/fileutil"
)

var (
	checkRules       string
	checkInteractive bool
	checkJSON        bool
	checkFailFast    bool
	checkOutput      string
	checkStdinFormat string
	checkWorkers     int
)

func init() {
	checkCmd.Flags().StringVarP(&checkRules, "rules", "r", "",
		"rule-set file, or the name of a rule set in the rules directory")
	checkCmd.Flags().BoolVarP(&checkInteractive, "interactive", "i", false,
		"pick the rule set from the rules directory")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	checkCmd.Flags().BoolVar(&checkFailFast, "fail-fast", false,
		"stop at the first invalid record")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "",
		"also write the full JSON summary to this file")
	checkCmd.Flags().StringVar(&checkStdinFormat, "stdin-format", "json",
		"format of records read from '-': json, yaml, toml")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 0,
		"records checked concurrently (default: number of CPUs)")
	checkCmd.MarkFlagsMutuallyExclusive("rules", "interactive")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <records...>",
	Short: "Validate records against a rule set",
	Long: `Validate every record in the given files against a rule set.

Record files may be JSON, YAML or TOML, holding one record or a list.
Use '-' to read records from standard input (see --stdin-format).

Each record runs through its own rule chain; the first failing rule is
reported with the field and the chain position. The command exits with
status 1 when any record fails.`,
	Example: `  # Validate with a rule-set file
  chaincheck check users.json --rules signup.yaml

  # Use a rule set from the rules directory by name
  chaincheck check users.json -r signup

  # Choose the rule set interactively
  chaincheck check users.yaml --interactive

  # Stop at the first failure and emit JSON
  cat users.json | chaincheck check - -r signup --fail-fast --json

  See Also: chaincheck rules list, chaincheck rules lint`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := currentConfig()

	rulesPath, err := resolveRuleSet(cmd, cfg)
	if err != nil {
		return err
	}

	_, compiled, err := ruleset.LoadCompiled(rulesPath)
	if err != nil {
		return errors.NewUserError(err, "Run: chaincheck rules lint "+rulesPath)
	}
	logger.Debug("loaded rule set", "name", compiled.Name, "path", rulesPath, "steps", len(compiled.Steps))

	records, err := loadRecords(cmd, args)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	format := validator.FormatJSON
	if !checkJSON {
		if format, err = validator.ParseFormat(cfg.OutputFormat); err != nil {
			return errors.NewConfigError(err)
		}
	}

	opts := []engine.Option{engine.WithFailFast(checkFailFast || cfg.FailFast)}
	if checkWorkers > 0 {
		opts = append(opts, engine.WithWorkers(checkWorkers))
	}
	sum, runErr := engine.Run(ctx, compiled, records, opts...)

	if checkOutput != "" {
		if err := fileutil.AtomicWriteJSON(checkOutput, sum); err != nil {
			return errors.NewSystemError(err, "Check that the output directory exists and is writable")
		}
	}

	if format == validator.FormatJSON || !quiet || sum.Failed > 0 {
		if err := validator.NewReporter(cmd.OutOrStdout(), format).Report(validator.FromSummary(sum)); err != nil {
			return err
		}
	}

	if runErr != nil {
		return errors.NewSystemError(runErr, "")
	}
	return sum.Err()
}

// resolveRuleSet returns the path of the rule set selected by --rules or
// --interactive. A --rules value that is not an existing file is looked up
// by name in the rules directory.
func resolveRuleSet(cmd *cobra.Command, cfg *config.Config) (string, error) {
	dir := cfg.RulesPath()

	if checkInteractive {
		return pickRuleSet(cmd, dir)
	}
	if checkRules == "" {
		return "", errors.NewUserError(errors.New("no rule set given"), "Pass --rules <file> or --interactive")
	}

	if _, err := os.Stat(checkRules); err == nil {
		return checkRules, nil
	}
	if filepath.Ext(checkRules) == "" {
		entries, err := ruleset.Discover(dir)
		if err != nil {
			return "", errors.NewSystemError(err, "")
		}
		for _, e := range entries {
			if e.Name == checkRules && e.Err == nil {
				return e.Path, nil
			}
		}
	}
	return "", errors.NewUserError(
		errors.Wrapf(errors.ErrNotFound, "rule set %q", checkRules),
		"Run: chaincheck rules list",
	)
}

// loadRecords decodes every record file; "-" reads standard input.
func loadRecords(cmd *cobra.Command, args []string) ([]record.Record, error) {
	var records []record.Record
	for _, arg := range args {
		var (
			recs []record.Record
			err  error
		)
		if arg == "-" {
			recs, err = record.Read(cmd.InOrStdin(), ruleset.Format(checkStdinFormat), "-")
		} else {
			recs, err = record.Load(arg)
		}
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}
