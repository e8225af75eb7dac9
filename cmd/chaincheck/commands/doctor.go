package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/internal/doctor"
	"github.com/thoreinstein/chaincheck/internal/errors"
)

var (
	doctorJSON bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"create a missing rules directory and tighten loose permissions")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the chaincheck configuration, the rules
directory and every rule set inside it.

Output modes:
  (default)   Show errors and warnings
  -v          Show all checks including passed ones
  -q          No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  chaincheck doctor
  chaincheck doctor --fix

  See Also: chaincheck rules lint, chaincheck config edit`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewConfigCheck(configPath(), configLoadErr))
	runner.AddCheck(doctor.NewPathPermissionCheck(configPath(), currentConfig().RulesPath()))
	runner.AddCheck(doctor.NewRuleSetCheck(currentConfig().RulesPath()))

	report := runner.Run()
	w := cmd.OutOrStdout()

	if doctorFix {
		fixes := runner.Fix()
		if len(fixes) > 0 {
			if !quiet && !doctorJSON {
				outputFixResults(w, fixes)
			}
			// Re-run so the report and exit code reflect the fixed state
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func outputFixResults(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(w, "%s fixed %s: %s\n", color.GreenString("✓"), f.Path, f.Description)
			continue
		}
		fmt.Fprintf(w, "%s could not fix %s: %s\n", color.RedString("✗"), f.Path, f.Description)
	}
	fmt.Fprintln(w)
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	}
	if quiet {
		return nil
	}
	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report) {
	// Verbose mode shows all checks, not just problems
	showAll := verbosity > 0

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

var (
	errDoctorWarnings = errors.New("doctor found warnings")
	errDoctorErrors   = errors.New("doctor found errors")
)
