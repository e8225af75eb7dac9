// Package ruleset loads and compiles named rule sets: ordered lists of
// per-field rule specifications that drive an analyzer chain.
package ruleset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/pkg/analyzer"
	"github.com/thoreinstein/chaincheck/pkg/fileutil"
)

// Format identifies a rule-set or record file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor returns the format implied by the path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}
}

// RuleSet is a named, ordered list of field checks.
type RuleSet struct {
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Fields      []FieldRules `json:"fields" yaml:"fields" toml:"fields"`
}

// FieldRules lists the rules applied, in order, to one record field.
// Field may be a dotted path into nested objects.
type FieldRules struct {
	Field string          `json:"field" yaml:"field" toml:"field"`
	Rules []analyzer.Spec `json:"rules" yaml:"rules" toml:"rules"`
}

// Step is one compiled rule application in chain order.
type Step struct {
	Field string
	Rule  analyzer.Rule
}

// Compiled is a rule set ready to drive a chain.
type Compiled struct {
	Name  string
	Steps []Step
}

// Field returns the field checked at chain position index.
func (c *Compiled) Field(index int) string {
	if index < 0 || index >= len(c.Steps) {
		return ""
	}
	return c.Steps[index].Field
}

// Load reads and decodes the rule set at path. A missing name defaults to
// the file's base name without extension.
func Load(path string) (*RuleSet, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	rs, err := Decode(data, format)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rs, nil
}

// Decode parses rule-set data in the given format.
func Decode(data []byte, format Format) (*RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRuleSet, "file is empty")
	}

	var rs RuleSet
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidRuleSet), "decoding YAML")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &rs); err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidRuleSet), "decoding JSON")
		}
	case FormatTOML:
		// TOML integers do not decode into the float bounds, so go through
		// a generic document and JSON.
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidRuleSet), "decoding TOML")
		}
		buf, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "re-encoding TOML document")
		}
		if err := json.Unmarshal(buf, &rs); err != nil {
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidRuleSet), "decoding TOML")
		}
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
	return &rs, nil
}

// Encode writes the rule set to w in the given format.
func (rs *RuleSet) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rs); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}
		return errors.Wrap(enc.Close(), "encoding YAML")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(rs), "encoding JSON")
	case FormatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(rs), "encoding TOML")
	default:
		return errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
}

// Compile validates the rule set and compiles every spec. All problems are
// reported together as RuleErrors, marked with errors.ErrInvalidRuleSet.
func (rs *RuleSet) Compile() (*Compiled, error) {
	var problems RuleErrors

	if len(rs.Fields) == 0 {
		problems = append(problems, &RuleError{Index: -1, Message: "rule set has no fields"})
	}

	compiled := &Compiled{Name: rs.Name}
	for i, f := range rs.Fields {
		name := f.Field
		if strings.TrimSpace(name) == "" {
			problems = append(problems, &RuleError{
				Index:   -1,
				Message: fmt.Sprintf("field %d has no name", i),
			})
			continue
		}
		if len(f.Rules) == 0 {
			problems = append(problems, &RuleError{Field: name, Index: -1, Message: "no rules"})
			continue
		}
		for j, spec := range f.Rules {
			rule, err := spec.Compile()
			if err != nil {
				problems = append(problems, &RuleError{Field: name, Index: j, Message: err.Error()})
				continue
			}
			compiled.Steps = append(compiled.Steps, Step{Field: name, Rule: rule})
		}
	}

	if len(problems) > 0 {
		return nil, errors.Mark(problems, errors.ErrInvalidRuleSet)
	}
	return compiled, nil
}

// LoadCompiled loads the rule set at path and compiles it.
func LoadCompiled(path string) (*RuleSet, *Compiled, error) {
	rs, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	c, err := rs.Compile()
	if err != nil {
		return rs, nil, errors.Wrapf(err, "compiling %s", path)
	}
	return rs, c, nil
}
