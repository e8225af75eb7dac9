// Package paths provides cross-platform path resolution for chaincheck's
// configuration and rule-set directories.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share).
//
//	paths.ConfigDir() // ~/.config/chaincheck
//	paths.RulesDir()  // ~/.local/share/chaincheck/rules
//
// # Overrides
//
// CHAINCHECK_CONFIG_DIR replaces the configuration directory, which keeps
// tests and CI runs isolated from the user's own configuration.
package paths
