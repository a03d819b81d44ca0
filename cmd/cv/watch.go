package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/config"
	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/export"
	"github.com/stackchef/chefvault/internal/platform/localfs"
	"github.com/stackchef/chefvault/internal/storage/factory"
	"github.com/stackchef/chefvault/internal/storage/filekv"
	"github.com/stackchef/chefvault/internal/telemetry"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: groupSharing,
	Short:   "Re-export automatically when the vault changes",
	Long: `Watch the vault's store document and re-export on every change.

Runs an export immediately, then re-exports after each write to the
store, debounced by watch.debounce (default 500ms). Useful next to a
CyberChef tab: the artifact on disk always reflects the vault.

Examples:
  cv watch
  cv watch --out ./exports --manifest
  cv config set watch.debounce 250ms`,
	Run: func(cmd *cobra.Command, args []string) {
		outFlag, _ := cmd.Flags().GetString("out")
		manifestFlag, _ := cmd.Flags().GetBool("manifest")

		target, ok := storeDocumentPath(vaultDir)
		if !ok {
			FatalError("the memory backend persists nothing to watch")
		}
		dir := resolveExportDir(outFlag, vaultDir)

		svc := export.New(store, localfs.New(dir), buildNotifier())
		opts := export.Options{WriteManifest: manifestFlag || config.GetBool("export.manifest")}

		exportOnce := func() {
			result, err := svc.Export(rootCtx, opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
				return
			}
			telemetry.RecordExport(rootCtx, result.Recipes, result.Bytes)
			debug.LogEvent("export", "", fmt.Sprintf("recipes=%d bytes=%d dir=%s", result.Recipes, result.Bytes, dir))
			if jsonOutput {
				outputJSON(result)
				return
			}
			fmt.Printf("%s Exported %d recipes (%d bytes)\n", time.Now().Format("15:04:05"), result.Recipes, result.Bytes)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			FatalError("creating watcher: %v", err)
		}
		defer func() { _ = watcher.Close() }()

		// Watch the directory, not the file: the file backend replaces
		// store.json by rename, which would drop a file-level watch.
		if err := watcher.Add(filepath.Dir(target)); err != nil {
			FatalError("watching %s: %v", filepath.Dir(target), err)
		}
		base := filepath.Base(target)

		exportOnce()
		fmt.Fprintf(os.Stderr, "\nWatching %s... (Press Ctrl+C to exit)\n", target)

		debounce := config.GetDuration("watch.debounce")
		if debounce <= 0 {
			debounce = 500 * time.Millisecond
		}
		var debounceTimer *time.Timer

		for {
			select {
			case <-rootCtx.Done():
				fmt.Fprintf(os.Stderr, "\nStopped watching.\n")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				// Rename-style replacement arrives as Create.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(debounce, exportOnce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	},
}

// storeDocumentPath returns the document the configured backend persists
// to. The second return is false for the memory backend, which has none.
func storeDocumentPath(vaultDir string) (string, bool) {
	switch factory.GetBackendFromConfig(vaultDir) {
	case configfile.BackendSQLite:
		cfg, err := configfile.Load(vaultDir)
		if err != nil || cfg == nil {
			cfg = configfile.DefaultConfig()
		}
		return cfg.DatabasePath(vaultDir), true
	case configfile.BackendMemory:
		return "", false
	default:
		return filepath.Join(vaultDir, filekv.StoreFileName), true
	}
}

func init() {
	watchCmd.Flags().String("out", "", "Directory to write the export artifact to")
	watchCmd.Flags().Bool("manifest", false, "Also write a .manifest.json next to the artifact")
	rootCmd.AddCommand(watchCmd)
}
