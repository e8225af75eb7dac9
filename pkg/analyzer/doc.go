// Package analyzer provides a fluent, chain-based input validator.
//
// A [Chain] applies an ordered sequence of rules to individual input values.
// The first failing rule is reported immediately through the chain's
// [Handler], after which every further [Chain.Validate] call is a no-op until
// [Chain.Reset] is called. When the chain completes without failure,
// [Chain.Finish] reports success through the same handler.
//
// # Basic Usage
//
//	chain := analyzer.New(func(failed bool, msg string, index int) {
//		if failed {
//			fmt.Printf("rule %d failed: %s\n", index, msg)
//			return
//		}
//		fmt.Println("record is valid")
//	})
//
//	chain.
//		Validate(name, analyzer.String{MinLen: analyzer.Ptr(3), MaxLen: analyzer.Ptr(64)}).
//		Validate(email, analyzer.Email{}).
//		Validate(age, analyzer.Number{Min: analyzer.Ptr(0.0), Max: analyzer.Ptr(150.0)}).
//		Finish()
//
// # Rules
//
// Rules form a closed set of kinds: [Exists], [String], [Email], [Number],
// [Pattern], [Equal] and [EqualAll]. Each carries an optional Message that
// replaces the rule's default failure message.
//
// Rules may also be described declaratively with [Spec], which mirrors the
// shape used by rule-set files and is converted with [Spec.Compile].
//
// # Handler Contract
//
// The handler is invoked at most once per run: either with failed=true at the
// point the first failure is detected, or with failed=false from Finish.
// A Chain is not safe for concurrent use; validate each record with its own
// chain.
package analyzer
