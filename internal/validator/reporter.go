package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/chaincheck/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat maps a configured output format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Newf("unknown output format %q (want text or json)", s)
	}
}

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

func (r *Reporter) reportJSON(result *Result) error {
	if result.Issues == nil {
		result.Issues = []Issue{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) error {
	name := result.RuleSet
	if name == "" {
		name = "rule set"
	}

	if !result.HasErrors() && !result.HasWarnings() {
		if result.Checked > 0 {
			fmt.Fprintln(r.out, color.GreenString("✓ %s: %d record(s) passed", name, result.Passed))
		} else {
			fmt.Fprintln(r.out, color.GreenString("✓ %s is valid", name))
		}
		r.printNotes(result.Infos())
		return nil
	}

	errs := result.Errors()
	warnings := result.Warnings()

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	if result.Checked > 0 {
		summary = append(summary, fmt.Sprintf("%d of %d record(s) passed", result.Passed, result.Checked))
	}
	fmt.Fprintf(r.out, "%s: %s\n\n", name, strings.Join(summary, ", "))

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		for _, i := range errs {
			r.printIssue(i, color.FgRed)
		}
		fmt.Fprintln(r.out)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		for _, i := range warnings {
			r.printIssue(i, color.FgYellow)
		}
		fmt.Fprintln(r.out)
	}

	r.printNotes(result.Infos())
	return nil
}

func (r *Reporter) printNotes(infos []Issue) {
	if len(infos) == 0 {
		return
	}
	fmt.Fprintln(r.out, "Notes:")
	for _, i := range infos {
		r.printIssue(i, color.FgCyan)
	}
}

// printIssue writes one issue as:  • field: message (key=value, ...)
func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	var sb strings.Builder
	sb.WriteString("  • ")

	if i.Field != "" {
		sb.WriteString(printer(i.Field))
		sb.WriteString(": ")
	}

	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		var ctxParts []string
		for k, v := range i.Context {
			if v == "" {
				continue
			}
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%s", k, v))
		}
		// Sort for deterministic output
		sort.Strings(ctxParts)

		if len(ctxParts) > 0 {
			sb.WriteString(" ")
			sb.WriteString(color.New(color.FgHiBlack).Sprintf("(%s)", strings.Join(ctxParts, ", ")))
		}
	}

	fmt.Fprintln(r.out, sb.String())
}
