package commands

import (
	"fmt"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/chaincheck/internal/cli/prompt"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
)

// stdinIsTerminal reports whether the full-screen picker can be used.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// findRuleSet runs the full-screen picker.
var findRuleSet = fuzzyFindRuleSet

// pickRuleSet lets the user choose a rule set from dir and returns its path.
// Terminals get a fuzzy finder; other input gets a numbered prompt.
func pickRuleSet(cmd *cobra.Command, dir string) (string, error) {
	entries, err := ruleset.Discover(dir)
	if err != nil {
		return "", errors.NewSystemError(err, "")
	}
	if len(entries) == 0 {
		return "", errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "no rule sets in %s", dir),
			"Add .yaml, .toml or .json rule sets to "+dir+" or pass --rules",
		)
	}

	var picked *ruleset.Entry
	if stdinIsTerminal() {
		picked, err = findRuleSet(entries)
	} else {
		picked, err = prompt.NewSelectorWithIO(cmd.InOrStdin(), cmd.ErrOrStderr()).SelectRuleSet(entries)
	}
	if err != nil {
		return "", errors.NewUserError(err, "")
	}
	return picked.Path, nil
}

func fuzzyFindRuleSet(entries []ruleset.Entry) (*ruleset.Entry, error) {
	usable := make([]ruleset.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Err == nil {
			usable = append(usable, e)
		}
	}
	if len(usable) == 0 {
		return nil, prompt.ErrNoRuleSets
	}

	idx, err := fuzzyfinder.Find(
		usable,
		func(i int) string {
			return usable[i].Name
		},
		fuzzyfinder.WithHeader("Select a rule set"),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			e := usable[i]
			return fmt.Sprintf("Name: %s\nPath: %s\nFields: %d\n\nDescription:\n%s",
				e.Name,
				e.Path,
				e.Fields,
				e.Description,
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, prompt.ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}

	return &usable[idx], nil
}
