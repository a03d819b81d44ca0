package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackchef/chefvault/internal/config"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/storage/factory"
	"github.com/stackchef/chefvault/internal/telemetry"
	"github.com/stackchef/chefvault/internal/ui"
	"github.com/stackchef/chefvault/internal/utils"
	"github.com/stackchef/chefvault/internal/vault"
)

// Command groups for organized help output.
const (
	groupRecipes = "recipes"
	groupSharing = "sharing"
	groupSetup   = "setup"
)

var (
	vaultFlag   string
	jsonOutput  bool
	quietFlag   bool
	verboseFlag bool
	noColorFlag bool

	// Resolved vault directory and open store for the current command.
	// Empty/nil for commands listed in noVaultCommands.
	vaultDir string
	store    *vault.Store

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noVaultCommands run without a resolved vault: they create one, only
// touch global state, or handle a missing vault themselves (doctor).
var noVaultCommands = map[string]bool{
	"init":             true,
	"version":          true,
	"guide":            true,
	"doctor":           true,
	"config":           true,
	"starters":         true,
	"help":             true,
	"completion":       true,
	"__complete":       true,
	"__completeNoDesc": true,
}

func isNoVaultCommand(cmd *cobra.Command) bool {
	if cmd.Name() == rootCmd.Name() {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if noVaultCommands[c.Name()] {
			return true
		}
	}
	return false
}

func init() {
	// Initialize viper configuration
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (default: auto-discover .chefvault/)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable styled output")

	// --version on the root command mirrors the version subcommand
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupRecipes, Title: "Working With Recipes:"},
		&cobra.Group{ID: groupSharing, Title: "Sharing & Data:"},
		&cobra.Group{ID: groupSetup, Title: "Setup & Maintenance:"},
	)
}

var rootCmd = &cobra.Command{
	Use:   "cv",
	Short: "cv - CyberChef recipe vault",
	Long: `Local persistence for CyberChef recipes. Save recipes from the command
line, keep them in a project-level vault, and move whole collections
between machines with deterministic export and import.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Handle --version flag on root command
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("cv version %s (%s)\n", Version, Build)
			return
		}
		// No subcommand - show help
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// --- Phase 1: Universal setup (runs for every command) ---
		setupSignalContext()
		applyConfigOverrides(cmd)
		applyVerbosityFlags()
		applyColorMode()
		initTelemetry()

		// --- Phase 2: Early exit for commands that don't need a vault ---
		if isNoVaultCommand(cmd) {
			return
		}

		// --- Phase 3: Vault resolution and store open ---
		resolveVault()
		openStore()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				WarnError("closing store: %v", err)
			}
			store = nil
		}

		if telemetry.Enabled() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			telemetry.Shutdown(ctx)
			cancel()
		}

		if rootCancel != nil {
			rootCancel()
		}
	},
}

// setupSignalContext installs rootCtx, cancelled on SIGINT/SIGTERM so
// in-flight store operations unwind before the process exits.
func setupSignalContext() {
	rootCtx, rootCancel = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		rootCancel()
	}()
}

// applyConfigOverrides reconciles persistent flags with the config layer.
// A flag the user set wins and is pushed into config for downstream
// readers; an untouched flag picks up the configured value.
func applyConfigOverrides(cmd *cobra.Command) {
	if cmd.Flags().Changed("json") {
		config.Set("json", jsonOutput)
	} else {
		jsonOutput = config.GetBool("json")
	}
	if cmd.Flags().Changed("quiet") {
		config.Set("quiet", quietFlag)
	} else {
		quietFlag = config.GetBool("quiet")
	}
	if cmd.Flags().Changed("verbose") {
		config.Set("verbose", verboseFlag)
	} else {
		verboseFlag = config.GetBool("verbose")
	}
	if cmd.Flags().Changed("no-color") {
		config.Set("no-color", noColorFlag)
	} else {
		noColorFlag = config.GetBool("no-color")
	}
}

func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// applyColorMode turns styling off process-wide when asked to, or when the
// terminal cannot take it. JSON output is always unstyled.
func applyColorMode() {
	if noColorFlag || jsonOutput || !ui.ShouldUseColor() {
		ui.DisableColor()
	}
}

func initTelemetry() {
	if err := telemetry.Init(rootCtx, "cv", Version); err != nil {
		WarnError("telemetry init failed: %v", err)
	}
}

// resolveVault fills vaultDir from --vault or discovery. Fatal when no
// vault exists; every command reaching this phase needs one.
func resolveVault() {
	if vaultFlag != "" {
		dir := utils.CanonicalizePath(vaultFlag)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			FatalError("vault directory not found: %s", dir)
		}
		vaultDir = dir
		return
	}

	vaultDir = discovery.FindVaultDir()
	if vaultDir == "" {
		if jsonOutput {
			outputJSONError(errors.New("no vault found"), "no_vault")
		}
		FatalErrorWithHint("no vault found in this directory or any parent", "Run 'cv init' to create one")
	}
	debug.Logf("using vault %s", vaultDir)
}

// openStore opens the configured backend and wraps it in the vault layer.
func openStore() {
	kv, err := factory.NewFromConfig(rootCtx, vaultDir)
	if err != nil {
		if jsonOutput {
			outputJSONError(err, "store_open")
		}
		FatalError("opening store: %v", err)
	}

	store = vault.New(telemetry.WrapKV(kv), vaultDir)
	if timeout := config.GetDuration("lock-timeout"); timeout > 0 {
		store.SetLockTimeout(timeout)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
