package analyzer

import "fmt"

// NoIndex is passed to the handler when no rule failed.
const NoIndex = -1

// Handler receives the outcome of a chain run.
//
// On failure, failed is true, message describes the violation and index is
// the zero-based position of the rule application that failed. On success,
// failed is false, message is empty and index is [NoIndex].
type Handler func(failed bool, message string, index int)

// State is the failure state of a Chain.
type State int

const (
	// StateClean means no rule has failed since construction or the last reset.
	StateClean State = iota
	// StateFailed means a rule failed and further validation is suppressed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Failure describes the first rule that failed in a chain run.
type Failure struct {
	// Index is the chain position of the failing rule application.
	Index int
	// Kind is the kind of rule that failed.
	Kind Kind
	// Message is the rule's custom message or its default message.
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s rule at index %d: %s", f.Kind, f.Index, f.Message)
}

// Chain evaluates rules against input values, stopping at the first failure.
type Chain struct {
	state    State
	position int
	handler  Handler
	failure  *Failure
}

// New creates a Chain that reports its outcome to h.
// A nil handler is replaced with one that discards the outcome.
func New(h Handler) *Chain {
	if h == nil {
		h = func(bool, string, int) {}
	}
	return &Chain{
		state:   StateClean,
		handler: h,
	}
}

// Reset clears the failure state so the chain can be reused for another run.
// The position counter is not reset.
func (c *Chain) Reset() {
	c.state = StateClean
	c.failure = nil
}

// Validate applies rule to input. Once the chain has failed, Validate does
// nothing, including leaving the position unchanged.
func (c *Chain) Validate(input any, rule Rule) *Chain {
	if c.state == StateFailed {
		return c
	}

	if rule == nil {
		c.fail(KindString, "Rule is missing.")
	} else if msg, ok := rule.check(input); !ok {
		c.fail(rule.Kind(), msg)
	}

	c.position++
	return c
}

// ValidateSpec compiles spec and applies the resulting rule to input.
// A spec that fails to compile counts as a failed rule application.
func (c *Chain) ValidateSpec(input any, spec Spec) *Chain {
	if c.state == StateFailed {
		return c
	}

	rule, err := spec.Compile()
	if err != nil {
		c.fail(spec.Kind(), err.Error())
		c.position++
		return c
	}
	return c.Validate(input, rule)
}

// Finish reports success to the handler if no rule failed.
// After a failure it does nothing, since the failure was already reported.
func (c *Chain) Finish() *Chain {
	if c.state == StateFailed {
		return c
	}
	c.handler(false, "", NoIndex)
	return c
}

// Failed reports whether a rule has failed since the last reset.
func (c *Chain) Failed() bool {
	return c.state == StateFailed
}

// State returns the current failure state.
func (c *Chain) State() State {
	return c.state
}

// Position returns the number of rule applications evaluated so far.
func (c *Chain) Position() int {
	return c.position
}

// Failure returns the recorded failure, or nil if the chain is clean.
func (c *Chain) Failure() *Failure {
	return c.failure
}

// Err returns the recorded failure as an error, or nil if the chain is clean.
func (c *Chain) Err() error {
	if c.failure == nil {
		return nil
	}
	return c.failure
}

// fail records the first failure and reports it. Later calls are ignored.
func (c *Chain) fail(kind Kind, message string) {
	if c.state == StateFailed {
		return
	}
	c.state = StateFailed
	c.failure = &Failure{
		Index:   c.position,
		Kind:    kind,
		Message: message,
	}
	c.handler(true, message, c.position)
}

// Check applies rules to a single input with a fresh chain and returns the
// first failure, or nil when every rule passes.
func Check(input any, rules ...Rule) error {
	c := New(nil)
	for _, r := range rules {
		c.Validate(input, r)
	}
	return c.Err()
}
