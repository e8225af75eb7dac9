// Package prompt provides line-oriented CLI prompts for terminals where a
// full-screen picker is unavailable.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
)

// Sentinel errors for rule-set selection.
var (
	ErrNoRuleSets         = errors.New("no rule sets to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles interactive selection prompts.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return NewSelectorWithIO(os.Stdin, os.Stdout)
}

// NewSelectorWithIO creates a Selector with custom reader and writer.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// SelectRuleSet prompts the user to choose one of entries. Entries that
// failed to load are listed but cannot be chosen.
//
// Returns:
//   - ErrNoRuleSets if no entry loaded successfully
//   - The only usable entry without prompting
//   - The selected entry based on user input (empty input picks the first)
//   - ErrInvalidSelection if the selection is out of range or unusable
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectRuleSet(entries []ruleset.Entry) (*ruleset.Entry, error) {
	usable := make([]int, 0, len(entries))
	for i, e := range entries {
		if e.Err == nil {
			usable = append(usable, i)
		}
	}
	switch len(usable) {
	case 0:
		return nil, ErrNoRuleSets
	case 1:
		return &entries[usable[0]], nil
	}

	fmt.Fprintln(s.writer, "Rule sets:")
	for i, e := range entries {
		line := fmt.Sprintf("  [%d] %s (%d field(s))", i+1, e.Name, e.Fields)
		if e.Err != nil {
			line = fmt.Sprintf("  [%d] %s (invalid)", i+1, e.Name)
		}
		fmt.Fprintln(s.writer, line)
	}
	fmt.Fprintf(s.writer, "Select [%d]: ", usable[0]+1)

	input, err := s.readLine()
	if err != nil {
		return nil, err
	}

	if input == "" {
		return &entries[usable[0]], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// 1-indexed
	if selection < 1 || selection > len(entries) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(entries))
	}
	if e := entries[selection-1]; e.Err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%s failed to load: %v", e.Name, e.Err)
	}

	return &entries[selection-1], nil
}

// Confirm asks a yes/no question. It returns true only if the user enters
// "y" or "yes" (case-insensitive).
func (s *Selector) Confirm(question string) bool {
	fmt.Fprintf(s.writer, "%s [y/N] ", question)

	input, err := s.readLine()
	if err != nil {
		return false
	}

	input = strings.ToLower(input)
	return input == "y" || input == "yes"
}

func (s *Selector) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading selection")
	}
	return strings.TrimSpace(input), nil
}
