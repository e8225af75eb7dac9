package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/chaincheck/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidOutputFormat indicates an output format other than text or json.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &ValueError{Value: cfg.Version, Err: ErrUnsupportedVersion})
	}

	switch strings.ToLower(cfg.OutputFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, &ValueError{Value: cfg.OutputFormat, Err: ErrInvalidOutputFormat})
	}

	if err := validatePath(cfg.RulesDir); err != nil {
		errs = append(errs, &PathError{
			Field: KeyRulesDir,
			Path:  cfg.RulesDir,
			Err:   err,
		})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// ValueError reports an unacceptable scalar value.
type ValueError struct {
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%v: %v", e.Err, e.Value)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
