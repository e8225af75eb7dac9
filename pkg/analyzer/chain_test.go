package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call captures a single handler invocation.
type call struct {
	failed  bool
	message string
	index   int
}

// recorder collects every handler invocation.
type recorder struct {
	calls []call
}

func (r *recorder) handle(failed bool, message string, index int) {
	r.calls = append(r.calls, call{failed: failed, message: message, index: index})
}

func newRecorded() (*Chain, *recorder) {
	rec := &recorder{}
	return New(rec.handle), rec
}

func TestChain_Scenarios(t *testing.T) {
	t.Run("string shorter than minimum", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate("ab", String{MinLen: Ptr(3)})

		require.Len(t, rec.calls, 1)
		assert.Equal(t, call{true, "Input string is shorter than minLength, minLength: 3", 0}, rec.calls[0])
	})

	t.Run("number in range then finish", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate(42, Number{Min: Ptr(0.0), Max: Ptr(100.0)}).Finish()

		require.Len(t, rec.calls, 1)
		assert.Equal(t, call{false, "", NoIndex}, rec.calls[0])
	})

	t.Run("malformed email", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate("not-an-email", Email{})

		require.Len(t, rec.calls, 1)
		assert.Equal(t, "Input expects email, but the provided input is malformed.", rec.calls[0].message)
	})

	t.Run("equality list mismatch", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate("x", EqualAll{Values: []any{"x", "x", "y"}})

		require.Len(t, rec.calls, 1)
		assert.Equal(t, "One or more of the match field(s) do not match the input field value or type.", rec.calls[0].message)
	})

	t.Run("first failure wins and later calls are no-ops", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate(5, Number{Max: Ptr(3.0)}).
			Validate("ignored", String{MinLen: Ptr(100)}).
			Finish()

		require.Len(t, rec.calls, 1)
		assert.True(t, rec.calls[0].failed)
		assert.Equal(t, "Input expects a number between unbounded and 3, but received 5", rec.calls[0].message)
		assert.Equal(t, 0, rec.calls[0].index)
		assert.Equal(t, 1, c.Position())
	})

	t.Run("reset then passing chain reports success", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate(5, Number{Max: Ptr(3.0)})
		c.Reset()
		c.Validate(2, Number{Max: Ptr(3.0)}).Finish()

		require.Len(t, rec.calls, 2)
		assert.True(t, rec.calls[0].failed)
		assert.Equal(t, call{false, "", NoIndex}, rec.calls[1])
	})
}

func TestChain_PositionCountsEvaluatedCalls(t *testing.T) {
	c, rec := newRecorded()

	c.Validate("ok", String{}).
		Validate("fine", String{}).
		Validate(7, String{}).
		Validate("skipped", String{}).
		Validate("skipped", String{})

	assert.Equal(t, 3, c.Position())
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 2, rec.calls[0].index)

	c.Reset()
	assert.Equal(t, 3, c.Position(), "reset does not clear position")

	c.Validate("again", String{})
	assert.Equal(t, 4, c.Position())
}

func TestChain_SingleReport(t *testing.T) {
	c, rec := newRecorded()

	// Both bounds would fail for a multibyte value checked against
	// contradictory limits; only the first reaches the handler.
	c.Validate("héllo", String{MinLen: Ptr(10), MaxLen: Ptr(2)})
	c.Validate(nil, Exists{})
	c.Finish()
	c.Finish()

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "Input string is shorter than minLength, minLength: 10", rec.calls[0].message)
}

func TestChain_FinishWithoutRules(t *testing.T) {
	c, rec := newRecorded()
	c.Finish()

	require.Len(t, rec.calls, 1)
	assert.False(t, rec.calls[0].failed)
}

func TestChain_ResetRestoresValidity(t *testing.T) {
	c, rec := newRecorded()

	c.Validate(1, String{})
	assert.True(t, c.Failed())
	assert.Equal(t, StateFailed, c.State())

	c.Reset()
	assert.False(t, c.Failed())
	assert.Equal(t, StateClean, c.State())
	assert.Nil(t, c.Failure())
	assert.NoError(t, c.Err())

	c.Validate("short", String{MaxLen: Ptr(2)})

	require.Len(t, rec.calls, 2)
	assert.True(t, rec.calls[1].failed)
	assert.Equal(t, "Input string is longer than maxLength, maxLength: 2", rec.calls[1].message)
}

func TestChain_FailureDetails(t *testing.T) {
	c, _ := newRecorded()
	c.Validate("user@example.com", Email{}).
		Validate("abc", Pattern{Regexp: mustCompile(t, `^\d+$`)})

	f := c.Failure()
	require.NotNil(t, f)
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, KindMatch, f.Kind)
	assert.Equal(t, "Input string does not match regular expression: /^\\d+$/", f.Message)
	assert.EqualError(t, c.Err(), "match rule at index 1: Input string does not match regular expression: /^\\d+$/")
}

func TestChain_NilHandlerAndRule(t *testing.T) {
	c := New(nil)
	assert.NotPanics(t, func() {
		c.Validate("x", nil).Finish()
	})
	assert.True(t, c.Failed())
	assert.Equal(t, 1, c.Position())
}

func TestChain_ValidateSpec(t *testing.T) {
	t.Run("compiled spec is applied", func(t *testing.T) {
		c, rec := newRecorded()
		c.ValidateSpec("ab", Spec{Type: KindString, MinLen: Ptr(3.0)})

		require.Len(t, rec.calls, 1)
		assert.Equal(t, "Input string is shorter than minLength, minLength: 3", rec.calls[0].message)
		assert.Equal(t, 1, c.Position())
	})

	t.Run("invalid spec fails the application", func(t *testing.T) {
		c, rec := newRecorded()
		c.ValidateSpec("ab", Spec{Type: KindMatch, Matches: &MatchSpec{Pattern: "("}})

		require.Len(t, rec.calls, 1)
		assert.Contains(t, rec.calls[0].message, "invalid rule")
		assert.Equal(t, KindMatch, c.Failure().Kind)
		assert.Equal(t, 1, c.Position())
	})

	t.Run("oversized length bound fails the application", func(t *testing.T) {
		c, rec := newRecorded()
		c.ValidateSpec("ab", Spec{Type: KindString, MinLen: Ptr(1e20)}).Finish()

		require.Len(t, rec.calls, 1)
		assert.True(t, rec.calls[0].failed)
		assert.Contains(t, rec.calls[0].message, "exceeds the largest supported length")
	})

	t.Run("no-op after failure", func(t *testing.T) {
		c, rec := newRecorded()
		c.Validate(1, String{}).ValidateSpec("x", Spec{})

		assert.Len(t, rec.calls, 1)
		assert.Equal(t, 1, c.Position())
	})
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("user@example.com", Exists{}, Email{MaxLen: Ptr(254)}))

	err := Check("", Exists{}, String{MinLen: Ptr(1), Message: "name is required"})
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, "name is required", f.Message)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClean, "clean"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.String())
		})
	}
}
