package analyzer

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	playvalidator "github.com/go-playground/validator/v10"
)

// Kind names a category of rule.
type Kind string

const (
	// KindExist requires a non-absent input.
	KindExist Kind = "exist"
	// KindString requires a string input with optional length bounds.
	KindString Kind = "string"
	// KindEmail requires a well-formed email address.
	KindEmail Kind = "email"
	// KindNumber requires a numeric input with optional value bounds.
	KindNumber Kind = "number"
	// KindMatch requires the input to match a pattern or comparison values.
	KindMatch Kind = "match"
)

// Kinds returns every rule kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindExist, KindString, KindEmail, KindNumber, KindMatch}
}

// Rule is a single validation check. The set of rules is closed; use
// [Exists], [String], [Email], [Number], [Pattern], [Equal] or [EqualAll].
type Rule interface {
	// Kind reports the category of the rule.
	Kind() Kind

	// check returns the failure message and false when input violates the rule.
	check(input any) (string, bool)
}

// emailValidator is safe for concurrent use and caches parsed tags.
var emailValidator = playvalidator.New()

// Ptr returns a pointer to v. It is a convenience for optional rule bounds.
func Ptr[T any](v T) *T {
	return &v
}

// Exists requires the input to be present.
type Exists struct {
	Message string
}

// Kind implements Rule.
func (Exists) Kind() Kind { return KindExist }

func (r Exists) check(input any) (string, bool) {
	if isAbsent(input) {
		return message(r.Message, "Input is required, but no value was provided."), false
	}
	return "", true
}

// String requires a string input whose length in characters lies within the
// optional bounds.
type String struct {
	MinLen  *int
	MaxLen  *int
	Message string
}

// Kind implements Rule.
func (String) Kind() Kind { return KindString }

func (r String) check(input any) (string, bool) {
	s, ok := input.(string)
	if !ok {
		return message(r.Message, "Input expects string type, but received type %s", typeName(input)), false
	}
	return checkLength(s, r.MinLen, r.MaxLen, r.Message)
}

// Email requires a string input that is a well-formed email address, with
// optional length bounds.
type Email struct {
	MinLen  *int
	MaxLen  *int
	Message string
}

// Kind implements Rule.
func (Email) Kind() Kind { return KindEmail }

func (r Email) check(input any) (string, bool) {
	s, ok := input.(string)
	if !ok {
		return message(r.Message, "Input expects string type, but received type %s", typeName(input)), false
	}
	if !IsEmail(s) {
		return message(r.Message, "Input expects email, but the provided input is malformed."), false
	}
	return checkLength(s, r.MinLen, r.MaxLen, r.Message)
}

// Number requires a numeric input that is not NaN and lies within the
// optional inclusive bounds.
type Number struct {
	Min     *float64
	Max     *float64
	Message string
}

// Kind implements Rule.
func (Number) Kind() Kind { return KindNumber }

func (r Number) check(input any) (string, bool) {
	n, ok := toFloat(input)
	if !ok || math.IsNaN(n) {
		return message(r.Message, "Input expects a number, but received type %s", typeName(input)), false
	}

	// Max is checked before min; only one range failure is ever reported.
	if (r.Max != nil && n > *r.Max) || (r.Min != nil && n < *r.Min) {
		return message(r.Message, "Input expects a number between %s and %s, but received %s",
			formatBound(r.Min), formatBound(r.Max), formatNumber(n)), false
	}
	return "", true
}

// Pattern requires the input to match Regexp, or not to match it when
// Inverted is set. Non-string inputs are matched against their default
// formatting.
type Pattern struct {
	Regexp   *regexp.Regexp
	Inverted bool
	Message  string
}

// Kind implements Rule.
func (Pattern) Kind() Kind { return KindMatch }

func (r Pattern) check(input any) (string, bool) {
	if r.Regexp == nil {
		return message(r.Message, "Rule has no regular expression to match against."), false
	}

	s, ok := input.(string)
	if !ok {
		s = fmt.Sprint(input)
	}

	matched := r.Regexp.MatchString(s)
	switch {
	case r.Inverted && matched:
		return message(r.Message, "Input string unexpectedly matches regular expression: /%s/", r.Regexp), false
	case !r.Inverted && !matched:
		return message(r.Message, "Input string does not match regular expression: /%s/", r.Regexp), false
	}
	return "", true
}

// Equal requires the input to be strictly equal to Value: same dynamic type
// and same value.
type Equal struct {
	Value   any
	Message string
}

// Kind implements Rule.
func (Equal) Kind() Kind { return KindMatch }

func (r Equal) check(input any) (string, bool) {
	if !strictEqual(input, r.Value) {
		return message(r.Message, "Input field does not match secondary match field."), false
	}
	return "", true
}

// EqualAll requires the input to be strictly equal to every element of
// Values. An empty list always passes.
type EqualAll struct {
	Values  []any
	Message string
}

// Kind implements Rule.
func (EqualAll) Kind() Kind { return KindMatch }

func (r EqualAll) check(input any) (string, bool) {
	for _, v := range r.Values {
		if !strictEqual(input, v) {
			return message(r.Message, "One or more of the match field(s) do not match the input field value or type."), false
		}
	}
	return "", true
}

// IsEmail reports whether s is a well-formed email address.
func IsEmail(s string) bool {
	return emailValidator.Var(s, "required,email") == nil
}

func checkLength(s string, minLen, maxLen *int, custom string) (string, bool) {
	n := utf8.RuneCountInString(s)
	if minLen != nil && n < *minLen {
		return message(custom, "Input string is shorter than minLength, minLength: %d", *minLen), false
	}
	if maxLen != nil && n > *maxLen {
		return message(custom, "Input string is longer than maxLength, maxLength: %d", *maxLen), false
	}
	return "", true
}

// message returns custom when set, otherwise the formatted default.
func message(custom, format string, args ...any) string {
	if custom != "" {
		return custom
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func isAbsent(input any) bool {
	if input == nil {
		return true
	}
	v := reflect.ValueOf(input)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func toFloat(input any) (float64, bool) {
	if input == nil {
		return 0, false
	}
	v := reflect.ValueOf(input)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func strictEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func typeName(input any) string {
	if input == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", input)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBound(b *float64) string {
	if b == nil {
		return "unbounded"
	}
	return formatNumber(*b)
}
