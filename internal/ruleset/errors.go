package ruleset

import (
	"fmt"
	"strings"
)

// ParseError represents an error that occurred while decoding a rule-set file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing rule set: %v", e.Err)
	}
	return fmt.Sprintf("parsing rule set %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RuleError locates a problem within a rule set.
// Index is the rule's position within its field, or -1 for field-level problems.
type RuleError struct {
	Field   string
	Index   int
	Message string
}

func (e *RuleError) Error() string {
	switch {
	case e.Field == "":
		return e.Message
	case e.Index < 0:
		return fmt.Sprintf("field %q: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("field %q rule %d: %s", e.Field, e.Index, e.Message)
	}
}

// RuleErrors aggregates every problem found while compiling a rule set.
type RuleErrors []*RuleError

func (errs RuleErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d problem(s): %s", len(errs), strings.Join(parts, "; "))
}
