// Package config provides configuration management for chaincheck using Viper.
package config

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/paths"
	"github.com/thoreinstein/chaincheck/pkg/fileutil"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. CHAINCHECK_FAIL_FAST=true.
const EnvPrefix = "CHAINCHECK"

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// Config keys.
const (
	KeyVersion      = "version"
	KeyRulesDir     = "rules_dir"
	KeyOutputFormat = "output_format"
	KeyFailFast     = "fail_fast"
)

// Keys lists every recognized config key in display order.
var Keys = []string{KeyVersion, KeyRulesDir, KeyOutputFormat, KeyFailFast}

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// RulesDir is searched by "rules list" and "check --interactive".
	// Empty means the XDG data directory.
	RulesDir string `mapstructure:"rules_dir" yaml:"rules_dir,omitempty"`

	// OutputFormat is the default report format: text or json.
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// FailFast stops a check at the first invalid record.
	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Version:      CurrentVersion,
		OutputFormat: "text",
	}
}

// RulesPath returns the rule-set directory with a leading "~" expanded,
// falling back to paths.RulesDir.
func (c *Config) RulesPath() string {
	dir := c.RulesDir
	if dir == "" {
		return paths.RulesDir()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home := paths.Home(); home != "" {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

// Init resets Viper and registers the config search path, environment
// overrides and defaults. Call this once at application startup before
// accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault(KeyVersion, d.Version)
	viper.SetDefault(KeyRulesDir, d.RulesDir)
	viper.SetDefault(KeyOutputFormat, d.OutputFormat)
	viper.SetDefault(KeyFailFast, d.FailFast)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, it searches the default location and falls
// back to defaults when no file exists.
// The loaded configuration is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path != "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		case errors.As(err, &notFound):
			// Implicit load with no file uses defaults.
		default:
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Mark(
			errors.Newf("validating config: %s", strings.Join(msgs, "; ")),
			errors.ErrInvalidConfig,
		)
	}

	return &cfg, nil
}

// LoadDefault loads the configuration from the default location.
func LoadDefault() (*Config, error) {
	return Load("")
}

// Save writes cfg as YAML to path atomically, creating parent directories.
func Save(cfg *Config, path string) error {
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Mark(errors.Newf("refusing to save invalid config: %v", errs[0]), errors.ErrInvalidConfig)
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return err
	}
	return errors.Wrap(fileutil.AtomicWriteYAML(path, cfg, 0o600), "saving config")
}
