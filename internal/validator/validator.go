package validator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thoreinstein/chaincheck/internal/engine"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/pkg/analyzer"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError indicates a record or rule set that failed.
	SeverityError Severity = iota
	// SeverityWarning indicates a non-blocking problem, such as skipped records.
	SeverityWarning
	// SeverityInfo indicates an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", text)
	}
	return nil
}

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Field is the record field or rule-set field with the issue (optional).
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Context carries the record name, rule kind and chain index.
	Context map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if rec := i.Context["record"]; rec != "" {
		sb.WriteString(rec)
		sb.WriteString(": ")
	}
	if i.Field != "" {
		sb.WriteString("field \"")
		sb.WriteString(i.Field)
		sb.WriteString("\": ")
	}
	sb.WriteString(i.Message)
	return sb.String()
}

// Result aggregates validation issues for one rule set.
type Result struct {
	RuleSet string  `json:"rule_set,omitempty"`
	Checked int     `json:"checked"`
	Passed  int     `json:"passed"`
	Issues  []Issue `json:"issues"`
}

// FromSummary converts an engine summary into a result with one error per
// invalid record and a warning when records were skipped.
func FromSummary(sum *engine.Summary) *Result {
	res := &Result{
		RuleSet: sum.RuleSet,
		Checked: len(sum.Outcomes),
		Passed:  sum.Passed,
	}
	for _, o := range sum.Outcomes {
		if o.Valid {
			continue
		}
		res.add(SeverityError, o.Field, o.Message, map[string]string{
			"record": o.Record,
			"rule":   string(o.Rule),
			"index":  strconv.Itoa(o.Index),
		})
	}
	if sum.Skipped > 0 {
		res.AddWarning("", fmt.Sprintf("%d of %d record(s) not checked", sum.Skipped, sum.Total))
	}
	return res
}

// FromRuleErrors converts rule-set compile problems into a result.
func FromRuleErrors(name string, problems ruleset.RuleErrors) *Result {
	res := &Result{RuleSet: name}
	for _, p := range problems {
		var ctx map[string]string
		if p.Index >= 0 {
			ctx = map[string]string{"rule": strconv.Itoa(p.Index)}
		}
		res.add(SeverityError, p.Field, p.Message, ctx)
	}
	return res
}

// Lint compiles rs and reports its problems. Duplicate fields are warnings;
// fields that do not start with an exist rule get an info note.
func Lint(rs *ruleset.RuleSet) *Result {
	res := &Result{RuleSet: rs.Name}
	if _, err := rs.Compile(); err != nil {
		var problems ruleset.RuleErrors
		if errors.As(err, &problems) {
			res = FromRuleErrors(rs.Name, problems)
		} else {
			res.AddError("", err.Error())
		}
	}

	seen := make(map[string]bool, len(rs.Fields))
	for _, f := range rs.Fields {
		if f.Field == "" {
			continue
		}
		if seen[f.Field] {
			res.AddWarning(f.Field, "field is listed more than once; its rules run in separate groups")
		}
		seen[f.Field] = true
		if len(f.Rules) > 0 && f.Rules[0].Kind() != analyzer.KindExist {
			res.AddInfo(f.Field, "no leading exist rule; a missing value fails the first rule instead")
		}
	}
	return res
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return r.count(SeverityError) > 0
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	return r.count(SeverityWarning) > 0
}

// AddError adds an error issue to the result.
func (r *Result) AddError(field, message string) {
	r.add(SeverityError, field, message, nil)
}

// AddWarning adds a warning issue to the result.
func (r *Result) AddWarning(field, message string) {
	r.add(SeverityWarning, field, message, nil)
}

// AddInfo adds an info issue to the result.
func (r *Result) AddInfo(field, message string) {
	r.add(SeverityInfo, field, message, nil)
}

func (r *Result) add(sev Severity, field, message string, ctx map[string]string) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Field:    field,
		Message:  message,
		Context:  ctx,
	})
}

// Errors returns a slice of all issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns a slice of all issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Infos returns a slice of all issues with SeverityInfo.
func (r *Result) Infos() []Issue {
	return r.filter(SeverityInfo)
}

func (r *Result) filter(sev Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			res = append(res, i)
		}
	}
	return res
}

func (r *Result) count(sev Severity) int {
	return len(r.filter(sev))
}
