package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackchef/chefvault/internal/config"
	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/storage/factory"
	"github.com/stackchef/chefvault/internal/utils"
	"github.com/stackchef/chefvault/internal/vault"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create a vault in the current directory",
	GroupID: groupSetup,
	Long: `Create a .chefvault/ directory with an empty recipe store.

The vault lives alongside your project; every cv command run from the
project tree finds it automatically. CHEFVAULT_DIR or --vault place it
somewhere else.`,
	Run: func(cmd *cobra.Command, _ []string) {
		backend, _ := cmd.Flags().GetString("backend")
		force, _ := cmd.Flags().GetBool("force")

		dir := vaultFlag
		if dir != "" {
			dir = utils.CanonicalizePath(dir)
		} else {
			var err error
			dir, err = discovery.DefaultVaultDir()
			if err != nil {
				FatalError("resolving vault location: %v", err)
			}
		}

		switch backend {
		case configfile.BackendFile, configfile.BackendSQLite:
		default:
			FatalError("unknown backend %q (supported: file, sqlite)", backend)
		}

		if existing, err := configfile.Load(dir); err == nil && existing != nil && !force {
			FatalErrorWithHint(
				fmt.Sprintf("vault already exists at %s", dir),
				"Use --force to rewrite its configuration",
			)
		}

		if err := os.MkdirAll(dir, 0o750); err != nil {
			FatalError("creating vault directory: %v", err)
		}

		cfg := configfile.DefaultConfig()
		cfg.Backend = backend
		if err := cfg.Save(dir); err != nil {
			FatalError("writing metadata.json: %v", err)
		}

		if err := createConfigYaml(dir); err != nil {
			WarnError("failed to create config.yaml: %v", err)
		}

		if err := createEmptyStore(dir); err != nil {
			FatalError("creating empty store: %v", err)
		}

		// Pick up the files we just wrote
		if err := config.Initialize(); err != nil {
			WarnError("failed to reload config: %v", err)
		}

		if jsonOutput {
			outputJSON(map[string]string{
				"vault":   dir,
				"backend": cfg.GetBackend(),
			})
			return
		}
		if !debug.IsQuiet() {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s Initialized empty vault at %s (backend: %s)\n", green("✓"), dir, cfg.GetBackend())
		}
	},
}

func init() {
	initCmd.Flags().String("backend", configfile.BackendFile, "Storage backend: file or sqlite")
	initCmd.Flags().Bool("force", false, "Rewrite vault configuration even if one exists")
	rootCmd.AddCommand(initCmd)
}

// createEmptyStore writes an empty recipe collection so the store document
// exists on disk from the start.
func createEmptyStore(dir string) error {
	kv, err := factory.NewFromConfig(rootCtx, dir)
	if err != nil {
		return err
	}
	v := vault.New(kv, dir)
	defer func() { _ = v.Close() }()

	count, err := v.Count(rootCtx)
	if err != nil {
		return fmt.Errorf("existing store is unreadable: %w (recover with 'cv import --replace')", err)
	}
	if count > 0 {
		// A forced re-init keeps existing recipes.
		return nil
	}
	return v.ReplaceAll(rootCtx, nil)
}

// createConfigYaml writes the commented config.yaml template. An existing
// file is left alone, even under --force.
func createConfigYaml(vaultDir string) error {
	configYamlPath := filepath.Join(vaultDir, "config.yaml")

	if _, err := os.Stat(configYamlPath); err == nil {
		return nil
	}

	const configYamlTemplate = `# chefvault configuration file
# Settings here apply to every cv command run against this vault.
# Each key can also be set via environment variables (CV_* short form,
# CHEFVAULT_* long form) or overridden with command-line flags.

# Enable JSON output by default
# json: false

# Suppress non-essential output
# quiet: false

# Enable verbose/debug output
# verbose: false

# Disable styled output
# no-color: false

# How long a command waits for the vault lock before giving up
# lock-timeout: "10s"

# Notification channel for export confirmations: terminal, log, or none
# notify.channel: "terminal"

# File the log notification channel appends to
# notify.log-path: ""

# Directory export artifacts land in, relative to the project root
# export.dir: ""

# Write a .manifest.json sidecar next to every export
# export.manifest: false

# How long watch waits after a store change before re-exporting
# watch.debounce: "500ms"
`

	if err := os.WriteFile(configYamlPath, []byte(configYamlTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}
	return nil
}
