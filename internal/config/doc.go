// Package config provides configuration management for the chaincheck CLI.
//
// # Configuration File
//
// The default configuration file location is ~/.config/chaincheck/config.yaml
// (or $CHAINCHECK_CONFIG_DIR/config.yaml). It uses YAML:
//
//	version: 1
//	rules_dir: ~/rules      # optional, defaults to the XDG data directory
//	output_format: text     # text or json
//	fail_fast: false
//
// Every key can be overridden from the environment with the CHAINCHECK_
// prefix, e.g. CHAINCHECK_OUTPUT_FORMAT=json.
//
// # Loading Configuration
//
// Call [Init] once, then [LoadDefault] to load from the default location
// with graceful fallback to default values:
//
//	config.Init()
//	cfg, err := config.LoadDefault()
//	if err != nil {
//	    return err
//	}
//
// Use [Load] to read a specific file; a missing file is reported as
// errors.ErrNotFound.
//
// # Validation
//
// Loaded configurations are validated automatically. [Validate] returns
// every problem found:
//
//	for _, e := range config.Validate(cfg) {
//	    fmt.Println(e)
//	}
package config
