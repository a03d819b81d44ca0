package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/importer"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/telemetry"
	"github.com/stackchef/chefvault/internal/vault"
	"golang.org/x/term"
)

var importCmd = &cobra.Command{
	Use:     "import",
	GroupID: groupSharing,
	Short:   "Import recipes from an export payload",
	Long: `Import recipes from a CyberChef export (a JSON array of recipes).

Reads from stdin by default, or use -i for file input.

Behavior:
  - Merge mode (default): incoming recipes are added to the vault.
    An incoming id that collides with a different stored recipe is
    remapped to a fresh id; identical duplicates are skipped.
  - Replace mode (--replace): the payload becomes the entire vault.
    This is the recovery path when the store is corrupt.
  - Use --dry-run to preview changes without applying them.

Examples:
  cv import -i CyberChefExport.json
  cat CyberChefExport.json | cv import
  cv import -i backup.json --replace
  cv import -i shared.json --dry-run`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			fmt.Fprintf(os.Stderr, "Error: Unexpected argument(s): %v\n\n", args)
			fmt.Fprintf(os.Stderr, "Did you mean: cv import -i %s\n\n", args[0])
			fmt.Fprintf(os.Stderr, "The import command does not accept positional arguments.\n")
			fmt.Fprintf(os.Stderr, "Use the -i flag to specify an input file:\n")
			fmt.Fprintf(os.Stderr, "  cv import -i CyberChefExport.json\n\n")
			fmt.Fprintf(os.Stderr, "Or pipe a payload via stdin:\n")
			fmt.Fprintf(os.Stderr, "  cat CyberChefExport.json | cv import\n")
			os.Exit(1)
		}

		input, _ := cmd.Flags().GetString("input")
		replace, _ := cmd.Flags().GetBool("replace")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		data := readImportPayload(input)

		opts := importer.Options{Mode: importer.ModeMerge, DryRun: dryRun}
		if replace {
			opts.Mode = importer.ModeReplace
		}

		result, err := importer.Import(rootCtx, store, data, opts)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, importErrorCode(err))
			}
			switch {
			case errors.Is(err, payload.ErrMalformedPayload):
				FatalErrorWithHint(err.Error(), "Expected a CyberChef export: a JSON array of {id, name, recipe} objects")
			case errors.Is(err, vault.ErrCorruptStore):
				FatalErrorWithHint(err.Error(), "The existing store cannot be merged into. Re-run with --replace to rebuild the vault from this payload")
			default:
				FatalError("import failed: %v", err)
			}
		}

		if !result.DryRun {
			telemetry.RecordImport(rootCtx, string(result.Mode), result.Imported, result.Collisions)
			debug.LogEvent("import", "", fmt.Sprintf("mode=%s imported=%d collisions=%d total=%d", result.Mode, result.Imported, result.Collisions, result.Total))
		}

		if jsonOutput {
			outputJSON(result)
			return
		}

		if result.DryRun {
			if result.Collisions > 0 {
				fmt.Fprintf(os.Stderr, "Collisions detected: %d (would be remapped)\n", result.Collisions)
			} else {
				fmt.Fprintf(os.Stderr, "No collisions detected.\n")
			}
			fmt.Fprintf(os.Stderr, "Would import %d recipes (vault total: %d)\n", result.Imported, result.Total)
			fmt.Fprintf(os.Stderr, "\nDry-run mode: no changes made\n")
			return
		}

		printRemappingReport(result.IDMapping)

		fmt.Fprintf(os.Stderr, "Import complete: %d imported", result.Imported)
		if len(result.IDMapping) > 0 {
			fmt.Fprintf(os.Stderr, ", %d remapped", len(result.IDMapping))
		}
		fmt.Fprintf(os.Stderr, ", vault total %d\n", result.Total)
	},
}

// readImportPayload loads the raw payload bytes from the -i file or stdin.
// An interactive terminal on stdin with no -i flag is treated as a usage
// error rather than blocking on a read that will never complete.
func readImportPayload(input string) []byte {
	if input != "" {
		data, err := os.ReadFile(input) // #nosec G304 -- user-supplied path is the point of -i
		if err != nil {
			FatalError("reading %s: %v", input, err)
		}
		return data
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: No input specified.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  cv import -i CyberChefExport.json           # Import from file\n")
		fmt.Fprintf(os.Stderr, "  cv import -i CyberChefExport.json --dry-run # Preview changes\n")
		fmt.Fprintf(os.Stderr, "  cat CyberChefExport.json | cv import        # Import from pipe\n\n")
		fmt.Fprintf(os.Stderr, "For more information, run: cv import --help\n")
		os.Exit(1)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		FatalError("reading stdin: %v", err)
	}
	return data
}

// printRemappingReport lists collision remaps sorted by original id.
func printRemappingReport(mapping map[int64]int64) {
	if len(mapping) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\n=== Remapping Report ===\n")
	fmt.Fprintf(os.Stderr, "Recipes remapped: %d\n\n", len(mapping))

	oldIDs := make([]int64, 0, len(mapping))
	for oldID := range mapping {
		oldIDs = append(oldIDs, oldID)
	}
	slices.SortFunc(oldIDs, func(a, b int64) int {
		return cmp.Compare(a, b)
	})

	fmt.Fprintf(os.Stderr, "Remappings:\n")
	for _, oldID := range oldIDs {
		fmt.Fprintf(os.Stderr, "  #%d → #%d\n", oldID, mapping[oldID])
	}
	fmt.Fprintf(os.Stderr, "\nIncoming recipes kept their names; only ids changed.\n")
}

// importErrorCode maps import failures to stable JSON error codes.
func importErrorCode(err error) string {
	switch {
	case errors.Is(err, payload.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, vault.ErrCorruptStore):
		return "corrupt_store"
	default:
		return "import_failed"
	}
}

func init() {
	importCmd.Flags().StringP("input", "i", "", "Input file (default: stdin)")
	importCmd.Flags().Bool("replace", false, "Replace the entire vault with the payload")
	importCmd.Flags().Bool("dry-run", false, "Preview changes without applying them")
	rootCmd.AddCommand(importCmd)
}
