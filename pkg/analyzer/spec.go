package analyzer

import (
	"math"
	"regexp"

	"github.com/cockroachdb/errors"
)

// ErrInvalidRule indicates a rule specification that cannot be compiled.
var ErrInvalidRule = errors.New("invalid rule")

// Spec is the declarative form of a rule, as found in rule-set files.
//
// Type selects the rule kind; an empty or unrecognized type selects string
// checking. For number rules MinLen and MaxLen bound the value instead of the
// length. Match rules use either Matches (pattern mode) or MatchField
// (equality mode, a single value or a list), never both.
type Spec struct {
	Type       Kind       `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	MinLen     *float64   `json:"minLen,omitempty" yaml:"minLen,omitempty" toml:"minLen,omitempty"`
	MaxLen     *float64   `json:"maxLen,omitempty" yaml:"maxLen,omitempty" toml:"maxLen,omitempty"`
	Msg        string     `json:"msg,omitempty" yaml:"msg,omitempty" toml:"msg,omitempty"`
	Matches    *MatchSpec `json:"matches,omitempty" yaml:"matches,omitempty" toml:"matches,omitempty"`
	MatchField any        `json:"matchField,omitempty" yaml:"matchField,omitempty" toml:"matchField,omitempty"`
}

// MatchSpec is the pattern mode of a match rule.
type MatchSpec struct {
	Pattern  string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Inverted bool   `json:"inverted,omitempty" yaml:"inverted,omitempty" toml:"inverted,omitempty"`
}

// Kind returns the rule kind s compiles to.
func (s Spec) Kind() Kind {
	switch s.Type {
	case KindExist, KindEmail, KindNumber, KindMatch:
		return s.Type
	default:
		return KindString
	}
}

// Compile converts s into a Rule.
// Errors wrap [ErrInvalidRule].
func (s Spec) Compile() (Rule, error) {
	switch s.Kind() {
	case KindExist:
		return Exists{Message: s.Msg}, nil

	case KindMatch:
		return s.compileMatch()

	case KindNumber:
		if s.Matches != nil {
			return nil, errors.Wrap(ErrInvalidRule, "matches is only valid for match rules")
		}
		if s.MinLen != nil && s.MaxLen != nil && *s.MinLen > *s.MaxLen {
			return nil, errors.Wrapf(ErrInvalidRule, "min %s exceeds max %s",
				formatNumber(*s.MinLen), formatNumber(*s.MaxLen))
		}
		return Number{Min: s.MinLen, Max: s.MaxLen, Message: s.Msg}, nil

	default:
		if s.Matches != nil {
			return nil, errors.Wrap(ErrInvalidRule, "matches is only valid for match rules")
		}
		minLen, err := length("minLen", s.MinLen)
		if err != nil {
			return nil, err
		}
		maxLen, err := length("maxLen", s.MaxLen)
		if err != nil {
			return nil, err
		}
		if minLen != nil && maxLen != nil && *minLen > *maxLen {
			return nil, errors.Wrapf(ErrInvalidRule, "minLen %d exceeds maxLen %d", *minLen, *maxLen)
		}
		if s.Kind() == KindEmail {
			return Email{MinLen: minLen, MaxLen: maxLen, Message: s.Msg}, nil
		}
		return String{MinLen: minLen, MaxLen: maxLen, Message: s.Msg}, nil
	}
}

func (s Spec) compileMatch() (Rule, error) {
	if s.Matches != nil {
		if s.MatchField != nil {
			return nil, errors.Wrap(ErrInvalidRule, "matches and matchField are mutually exclusive")
		}
		re, err := regexp.Compile(s.Matches.Pattern)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidRule, "compiling pattern %q: %v", s.Matches.Pattern, err)
		}
		return Pattern{Regexp: re, Inverted: s.Matches.Inverted, Message: s.Msg}, nil
	}

	if values, ok := s.MatchField.([]any); ok {
		normalized := make([]any, len(values))
		for i, v := range values {
			normalized[i] = Normalize(v)
		}
		return EqualAll{Values: normalized, Message: s.Msg}, nil
	}
	return Equal{Value: Normalize(s.MatchField), Message: s.Msg}, nil
}

// length converts an optional length bound to an int.
// maxLength bounds string lengths so the int conversion is exact on every
// platform.
const maxLength = math.MaxInt32

func length(name string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if *v < 0 || *v != math.Trunc(*v) {
		return nil, errors.Wrapf(ErrInvalidRule, "%s must be a non-negative integer, got %s", name, formatNumber(*v))
	}
	if *v > maxLength {
		return nil, errors.Wrapf(ErrInvalidRule, "%s %s exceeds the largest supported length %d", name, formatNumber(*v), maxLength)
	}
	n := int(*v)
	return &n, nil
}

// Normalize converts every numeric value in v to float64, descending into
// slices and string-keyed maps. Decoders disagree on numeric types (JSON
// yields float64, YAML int, TOML int64); normalizing both rule values and
// inputs lets strict equality compare them by value.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}
