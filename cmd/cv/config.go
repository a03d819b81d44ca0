package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: groupSetup,
	Short:   "Manage configuration settings",
	Long: `Manage configuration settings stored in .chefvault/config.yaml.

Environment variables override the file: every key answers to a short
CV_ form and a long CHEFVAULT_ form (CV_NOTIFY_CHANNEL wins over
CHEFVAULT_NOTIFY_CHANNEL when both are set).

Keys:
  json             Default --json output (true/false)
  quiet            Suppress non-essential output
  verbose          Verbose debug logging
  no-color         Disable ANSI colors
  lock-timeout     How long to wait for the vault lock (e.g. 10s)
  notify.channel   Export notification channels (terminal, log, none)
  notify.log-path  Log file for the log channel
  export.dir       Directory export artifacts are written to
  export.manifest  Also write a .manifest.json next to exports
  watch.debounce   Quiet period before watch re-exports (e.g. 500ms)

Examples:
  cv config set notify.channel log
  cv config set export.manifest true
  cv config get export.dir
  cv config list`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		if !config.IsKnownKey(key) {
			if jsonOutput {
				outputJSONError(fmt.Errorf("unknown config key: %s", key), "unknown_key")
			}
			FatalErrorWithHint(fmt.Sprintf("unknown config key %q", key), "Run 'cv config' to see known keys")
		}

		if err := config.SetYamlConfig(key, value); err != nil {
			if jsonOutput {
				outputJSONError(err, "config_write_failed")
			}
			FatalError("setting config: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{
				"key":      key,
				"value":    value,
				"location": "config.yaml",
			})
			return
		}
		fmt.Printf("Set %s = %s (in config.yaml)\n", key, value)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		key := args[0]

		if !config.IsKnownKey(key) {
			if jsonOutput {
				outputJSONError(fmt.Errorf("unknown config key: %s", key), "unknown_key")
			}
			FatalErrorWithHint(fmt.Sprintf("unknown config key %q", key), "Run 'cv config' to see known keys")
		}

		value := config.GetYamlConfig(key)

		if jsonOutput {
			outputJSON(map[string]string{
				"key":      key,
				"value":    value,
				"location": "config.yaml",
			})
			return
		}
		if value == "" {
			fmt.Printf("%s (not set in config.yaml)\n", key)
			return
		}
		fmt.Printf("%s\n", value)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List effective configuration",
	Long: `List the effective value of every known key, after defaults,
config.yaml, and environment overrides are applied.`,
	Run: func(_ *cobra.Command, _ []string) {
		if jsonOutput {
			outputJSON(config.AllSettings())
			return
		}

		fmt.Println("Configuration (effective):")
		for _, key := range config.KnownKeys() {
			fmt.Printf("  %s = %s\n", key, config.GetString(key))
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
