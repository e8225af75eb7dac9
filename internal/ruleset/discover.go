package ruleset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/thoreinstein/chaincheck/internal/errors"
)

// Entry describes a rule-set file found by Discover.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	Fields      int    `json:"fields"`
	// Err is set when the file could not be decoded.
	Err error `json:"-"`
}

// Discover lists the rule-set files directly inside dir, sorted by name
// and then path.
// Files that fail to decode are included with Err set so callers can
// surface them. A missing directory yields no entries.
func Discover(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading rules directory %s", dir)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if _, err := FormatFor(path); err != nil {
			continue
		}

		rs, err := Load(path)
		if err != nil {
			entries = append(entries, Entry{Name: de.Name(), Path: path, Err: err})
			continue
		}
		entries = append(entries, Entry{
			Name:        rs.Name,
			Description: rs.Description,
			Path:        path,
			Fields:      len(rs.Fields),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
