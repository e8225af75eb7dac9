// Package engine runs compiled rule sets against decoded records.
//
// Every record gets its own analyzer chain. The chain's handler captures
// the outcome, and the failing chain position is mapped back to the field
// that was being checked.
package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/logging"
	"github.com/thoreinstein/chaincheck/internal/record"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/pkg/analyzer"
)

// Outcome is the result of checking one record.
type Outcome struct {
	Record string `json:"record"`
	Valid  bool   `json:"valid"`

	// Field, Rule, Index and Message describe the first failure and are
	// empty (Index is analyzer.NoIndex) for valid records.
	Field   string        `json:"field,omitempty"`
	Rule    analyzer.Kind `json:"rule,omitempty"`
	Index   int           `json:"index"`
	Message string        `json:"message,omitempty"`
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	RuleSet  string    `json:"rule_set"`
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	Outcomes []Outcome `json:"outcomes"`
}

// OK reports whether every checked record passed and none were skipped.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.Skipped == 0
}

// Err returns an error marked errors.ErrValidationFailed when any record
// failed, and nil otherwise.
func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return errors.Wrapf(errors.ErrValidationFailed, "%d of %d record(s) failed %s",
		s.Failed, s.Total, s.RuleSet)
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	if o.Valid {
		s.Passed++
	} else {
		s.Failed++
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithFailFast stops a run at the first invalid record. Records are then
// checked one at a time in input order.
func WithFailFast(failFast bool) Option {
	return func(e *Engine) {
		e.failFast = failFast
	}
}

// WithWorkers sets how many records are checked concurrently.
// Values below one mean one.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithLogger overrides the logger taken from the run context.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine checks records against one compiled rule set.
type Engine struct {
	set      *ruleset.Compiled
	failFast bool
	workers  int
	logger   *slog.Logger
}

// New creates an Engine for set. By default records are checked by
// GOMAXPROCS workers and the whole batch is always evaluated.
func New(set *ruleset.Compiled, opts ...Option) *Engine {
	e := &Engine{
		set:     set,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is shorthand for New(set, opts...).Run(ctx, records).
func Run(ctx context.Context, set *ruleset.Compiled, records []record.Record, opts ...Option) (*Summary, error) {
	return New(set, opts...).Run(ctx, records)
}

// Check runs the rule set's chain against a single record.
func (e *Engine) Check(ctx context.Context, rec record.Record) Outcome {
	logger := e.loggerFor(ctx)
	out := Outcome{Record: rec.Name(), Valid: true, Index: analyzer.NoIndex}

	chain := analyzer.New(func(failed bool, message string, index int) {
		if !failed {
			return
		}
		out.Valid = false
		out.Index = index
		out.Field = e.set.Field(index)
		out.Message = message
		if index >= 0 && index < len(e.set.Steps) {
			out.Rule = e.set.Steps[index].Rule.Kind()
		}
	})

	for i, step := range e.set.Steps {
		if chain.Failed() {
			break
		}
		logger.Log(ctx, logging.LevelTrace, "applying rule",
			"record", out.Record,
			"field", step.Field,
			"rule", step.Rule.Kind(),
			"index", i)
		chain.Validate(rec.Get(step.Field), step.Rule)
	}
	chain.Finish()

	if out.Valid {
		logger.Debug("record passed", "record", out.Record)
	} else {
		logger.Debug("record failed",
			"record", out.Record,
			"field", out.Field,
			"index", out.Index,
			"message", out.Message)
	}
	return out
}

// Run checks every record and returns the summary. Cancelling ctx stops
// the run between records; the partial summary is returned together with
// the context error.
func (e *Engine) Run(ctx context.Context, records []record.Record) (*Summary, error) {
	logger := e.loggerFor(ctx)
	logger.Info("checking records",
		"rule_set", e.set.Name,
		"records", len(records),
		"steps", len(e.set.Steps))

	var err error
	sum := &Summary{RuleSet: e.set.Name, Total: len(records)}
	if e.failFast || e.workers <= 1 || len(records) < 2 {
		err = e.runSequential(ctx, records, sum)
	} else {
		err = e.runConcurrent(ctx, records, sum)
	}
	sum.Skipped = sum.Total - len(sum.Outcomes)

	logger.Info("check complete",
		"rule_set", sum.RuleSet,
		"passed", sum.Passed,
		"failed", sum.Failed,
		"skipped", sum.Skipped)
	return sum, err
}

func (e *Engine) runSequential(ctx context.Context, records []record.Record, sum *Summary) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "check interrupted")
		}
		out := e.Check(ctx, rec)
		sum.add(out)
		if !out.Valid && e.failFast {
			e.loggerFor(ctx).Info("stopping at first invalid record", "record", out.Record)
			return nil
		}
	}
	return nil
}

// runConcurrent fans records out to a worker pool. Outcomes keep input
// order.
func (e *Engine) runConcurrent(ctx context.Context, records []record.Record, sum *Summary) error {
	workers := min(e.workers, len(records))

	outcomes := make([]Outcome, len(records))
	done := make([]bool, len(records))
	work := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				outcomes[i] = e.Check(ctx, records[i])
				done[i] = true
			}
		}()
	}

feed:
	for i := range records {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	for i, ok := range done {
		if ok {
			sum.add(outcomes[i])
		}
	}
	if len(sum.Outcomes) < len(records) {
		return errors.Wrap(ctx.Err(), "check interrupted")
	}
	return nil
}

func (e *Engine) loggerFor(ctx context.Context) *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.FromContext(ctx)
}
