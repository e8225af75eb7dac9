// Package validator turns check outcomes and rule-set problems into
// reportable issues and renders them as text or JSON.
//
// # Core Concepts
//
//   - [Severity]: Distinguishes failed records from non-blocking warnings.
//   - [Issue]: A single problem with its field and context (record, rule, index).
//   - [Result]: Aggregates the issues for one rule set.
//   - [Reporter]: Writes a Result in a [Format].
//
// # Basic Usage
//
//	sum, err := engine.Run(ctx, compiled, records)
//	if err != nil {
//		return err
//	}
//	result := validator.FromSummary(sum)
//	_ = validator.NewReporter(os.Stdout, validator.FormatText).Report(result)
package validator
