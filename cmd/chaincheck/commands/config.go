package commands

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/chaincheck/internal/config"
	"github.com/thoreinstein/chaincheck/internal/editor"
	"github.com/thoreinstein/chaincheck/internal/errors"
	"github.com/thoreinstein/chaincheck/internal/paths"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage chaincheck configuration",
	Long: `Manage chaincheck configuration stored in ~/.config/chaincheck/config.yaml.

Without a subcommand, lists the effective configuration: file values
merged with CHAINCHECK_* environment overrides and defaults.`,
	Example: `  # List all configuration
  chaincheck config

  # Get a specific value
  chaincheck config get rules_dir

  # Set a value
  chaincheck config set output_format json

See Also: chaincheck init`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Get a single effective configuration value by key.`,
	Example: `  chaincheck config get fail_fast

See Also: chaincheck config set, chaincheck config list`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys,
	RunE:      runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the configuration file.

The result is validated before it is written.`,
	Example: `  chaincheck config set rules_dir ~/rules
  chaincheck config set fail_fast true

See Also: chaincheck config get, chaincheck config list`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all effective configuration values in YAML format.`,
	Example: `  chaincheck config list

See Also: chaincheck config get, chaincheck config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

If no configuration file exists, prints an error suggesting to run 'chaincheck init'.`,
	Example: `  chaincheck config edit
  EDITOR=nano chaincheck config edit

See Also: chaincheck config list, chaincheck init`,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath())
	},
}

// configPath returns the --config path or the default config file.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	return paths.ConfigFile()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !slices.Contains(config.Keys, key) {
		return errors.NewUserError(
			errors.Newf("unknown key %q", key),
			"Valid keys: "+strings.Join(config.Keys, ", "),
		)
	}

	if key == config.KeyRulesDir {
		fmt.Fprintln(cmd.OutOrStdout(), currentConfig().RulesPath())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	// Start from the file on disk, not the environment-merged view
	cfg := config.Default()
	if _, err := os.Stat(configPath()); err == nil {
		config.Init()
		loaded, err := config.Load(configPath())
		if err != nil {
			return errors.NewConfigError(err)
		}
		cfg = loaded
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return errors.NewUserError(err, "Valid keys: "+strings.Join(config.Keys, ", "))
	}

	if err := config.Save(cfg, configPath()); err != nil {
		return errors.NewUserError(err, "")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// setConfigValue parses value for key and stores it in cfg.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case config.KeyVersion:
		v, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "%s must be an integer", key)
		}
		cfg.Version = v
	case config.KeyRulesDir:
		cfg.RulesDir = value
	case config.KeyOutputFormat:
		cfg.OutputFormat = strings.ToLower(value)
	case config.KeyFailFast:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "%s must be true or false", key)
		}
		cfg.FailFast = v
	default:
		return errors.Newf("unknown key %q", key)
	}
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(currentConfig()); err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	return errors.Wrap(enc.Close(), "marshaling config")
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewConfigError(errors.Wrapf(errors.ErrNotFound, "config file %s", path))
	}

	return editor.Open(cmd.ErrOrStderr(), path)
}
