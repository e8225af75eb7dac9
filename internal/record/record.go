// Package record decodes the input records checked by a rule set.
//
// A record is a flat or nested object keyed by field name. Files may hold a
// single record or a list of them:
//
//   - JSON: an object, an array of objects, or a stream of objects
//   - YAML: a mapping or a sequence of mappings, across any number of documents
//   - TOML: a single table, or an array of tables named "records"
//
// Numbers are normalized to float64 regardless of source format so that
// match rules compare equal across encodings.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/ruleset"
	"github.com/thoreinstein/chaincheck/pkg/analyzer"
	"github.com/thoreinstein/chaincheck/pkg/fileutil"
)

// TOMLRecordsKey names the array of tables holding multiple TOML records.
const TOMLRecordsKey = "records"

// Record is one decoded input object.
type Record struct {
	// Source is the file the record came from, or "-" for standard input.
	Source string

	// Index is the record's position within Source.
	Index int

	Fields map[string]any
}

// Name identifies the record in reports, e.g. "users.json#2".
func (r Record) Name() string {
	return fmt.Sprintf("%s#%d", r.Source, r.Index)
}

// Get returns the value at path, or nil when any segment is missing.
func (r Record) Get(path string) any {
	v, _ := Lookup(r.Fields, path)
	return v
}

// Lookup resolves a field path against fields. An exact key match wins;
// otherwise the path is split on "." and each segment descends one level
// of nested objects.
func Lookup(fields map[string]any, path string) (any, bool) {
	if v, ok := fields[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var cur any = fields
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Load reads every record in the file at path. The format is chosen by
// extension.
func Load(path string) ([]Record, error) {
	format, err := ruleset.FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, err
	}

	return Decode(data, format, path)
}

// Read decodes every record from r in the given format.
func Read(r io.Reader, format ruleset.Format, source string) ([]Record, error) {
	data, err := io.ReadAll(io.LimitReader(r, fileutil.MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	if len(data) > fileutil.MaxFileSize {
		return nil, fileutil.ErrFileTooLarge
	}
	return Decode(data, format, source)
}

// Decode parses record data in the given format. Source labels the
// returned records.
func Decode(data []byte, format ruleset.Format, source string) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRecord, "%s: no records", source)
	}

	var (
		values []any
		err    error
	)
	switch format {
	case ruleset.FormatJSON:
		values, err = decodeJSON(data)
	case ruleset.FormatYAML:
		values, err = decodeYAML(data)
	case ruleset.FormatTOML:
		values, err = decodeTOML(data)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidRecord), "decoding %s", source)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		fields, ok := analyzer.Normalize(v).(map[string]any)
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidRecord,
				"%s: record %d is %T, want an object", source, len(records), v)
		}
		records = append(records, Record{Source: source, Index: len(records), Fields: fields})
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRecord, "%s: no records", source)
	}
	return records, nil
}

func decodeJSON(data []byte) ([]any, error) {
	var out []any
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var v any
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		out = append(out, flatten(v)...)
	}
	return out, nil
}

func decodeYAML(data []byte) ([]any, error) {
	var out []any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var v any
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		out = append(out, flatten(stringKeys(v))...)
	}
	return out, nil
}

func decodeTOML(data []byte) ([]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if list, ok := doc[TOMLRecordsKey].([]any); ok && len(doc) == 1 {
		return list, nil
	}
	if list, ok := doc[TOMLRecordsKey].([]map[string]any); ok && len(doc) == 1 {
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, nil
	}
	return []any{doc}, nil
}

// flatten expands a top-level list into its elements.
func flatten(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

// stringKeys converts YAML mappings with non-string keys so every nested
// object is a map[string]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}
