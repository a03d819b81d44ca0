package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackchef/chefvault/internal/config"
	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/export"
	"github.com/stackchef/chefvault/internal/notify"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/platform/localfs"
	"github.com/stackchef/chefvault/internal/telemetry"
	"github.com/stackchef/chefvault/internal/vault"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the whole collection to CyberChefExport.json",
	GroupID: groupSharing,
	Long: `Export every recipe as a canonical CyberChef payload.

The artifact is always named ` + payload.ExportFileName + ` and lands in the
project root unless export.dir or --out says otherwise. Repeated exports
of an unchanged collection are byte-identical.

Examples:
  cv export
  cv export --out ~/backups --manifest
  cv export --stdout | jq length`,
	Run: func(cmd *cobra.Command, args []string) {
		toStdout, _ := cmd.Flags().GetBool("stdout")
		outDir, _ := cmd.Flags().GetString("out")
		manifest, _ := cmd.Flags().GetBool("manifest")

		if toStdout {
			exportToStdout()
			return
		}

		dir := resolveExportDir(outDir, vaultDir)
		saver := localfs.New(dir)
		svc := export.New(store, saver, buildNotifier())

		opts := export.Options{
			WriteManifest: manifest || config.GetBool("export.manifest"),
		}

		result, err := svc.Export(rootCtx, opts)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, errorCode(err))
			}
			if errors.Is(err, vault.ErrCorruptStore) {
				FatalErrorWithHint(err.Error(), "Recover with 'cv import --replace' from a known-good export")
			}
			FatalError("%v", err)
		}

		telemetry.RecordExport(rootCtx, result.Recipes, result.Bytes)
		debug.LogEvent("export", "", fmt.Sprintf("recipes=%d bytes=%d dir=%s", result.Recipes, result.Bytes, dir))

		if jsonOutput {
			outputJSON(result)
			return
		}
		if !debug.IsQuiet() {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s Exported %d recipes to %s (%d bytes)\n",
				green("✓"), result.Recipes, filepath.Join(dir, result.Filename), result.Bytes)
			if result.Manifest {
				fmt.Printf("  Manifest: %s\n", filepath.Join(dir, export.ManifestName(result.Filename)))
			}
		}
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Directory to write the artifact to")
	exportCmd.Flags().Bool("stdout", false, "Write the payload to stdout instead of a file")
	exportCmd.Flags().Bool("manifest", false, "Also write a .manifest.json sidecar")
	rootCmd.AddCommand(exportCmd)
}

// exportToStdout writes the canonical payload to stdout. No file is
// created and no notification fires.
func exportToStdout() {
	recipes, err := store.LoadAll(rootCtx)
	if err != nil {
		if errors.Is(err, vault.ErrCorruptStore) {
			FatalErrorWithHint(err.Error(), "Recover with 'cv import --replace' from a known-good export")
		}
		FatalError("%v", err)
	}
	data, err := payload.Encode(recipes)
	if err != nil {
		FatalError("%v", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		FatalError("writing stdout: %v", err)
	}
	telemetry.RecordExport(rootCtx, len(recipes), len(data))
}

// resolveExportDir picks where the artifact lands. Precedence: --out,
// config.yaml export.dir, metadata.json export_dir, project root.
// Relative directories resolve against the project root, never the vault.
func resolveExportDir(outFlag, vaultDir string) string {
	base := discovery.ProjectRoot(vaultDir)

	dir := outFlag
	if dir == "" {
		dir = config.GetString("export.dir")
	}
	if dir == "" {
		if cfg, err := configfile.Load(vaultDir); err == nil && cfg != nil {
			dir = cfg.ExportDir
		}
	}

	switch {
	case dir == "":
		return base
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(base, dir)
	}
}

// buildNotifier constructs the notification dispatcher from config.
func buildNotifier() *notify.Dispatcher {
	channels := config.GetStringSlice("notify.channel")
	return notify.NewDispatcher(channels, os.Stdout, config.GetString("notify.log-path"))
}
