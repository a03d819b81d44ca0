package main

import (
	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/ui"
)

const guideContent = `# chefvault guide

cv keeps CyberChef recipes in a local vault and moves them in and out
as CyberChef-compatible JSON. The artifact it writes,
**CyberChefExport.json**, loads straight into CyberChef's recipe
manager, and anything CyberChef exports loads straight back.

## Getting started

` + "```bash" + `
cv init                 # create .chefvault/ here
cv init --backend sqlite
` + "```" + `

The vault lives in ` + "`.chefvault/`" + ` next to your work, like a ` + "`.git`" + `
directory. cv finds it from any subdirectory. Set ` + "`CHEFVAULT_DIR`" + ` to
pin a vault explicitly, or keep one in your home directory as a
fallback.

## Saving recipes

` + "```bash" + `
cv save "Decode JWT" "JWT_Decode()"
cv save "Triage" -f triage.recipe
cv save --starter defang-url
chef-export | cv save "Pipeline output" -
cv save -i                               # interactive form
` + "```" + `

A recipe is a name plus an operation chain, the same text CyberChef
shows in its recipe pane. Starters are ready-made bodies for common
tasks; ` + "`cv starters`" + ` lists them.

## Working with the vault

` + "```bash" + `
cv list                      # newest ids last
cv list --sort updated --reverse
cv list --since 7d
cv show 3
cv edit 3 --name "Better name"
cv edit 3 -f updated.recipe
cv delete 3
` + "```" + `

## Sharing

` + "```bash" + `
cv export                    # writes CyberChefExport.json
cv export --out ./exports --manifest
cv export --stdout | jq length
cv import -i CyberChefExport.json
cv import -i other.json --dry-run
cv watch                     # re-export on every change
` + "```" + `

Export writes the same bytes for the same vault every time, so the
artifact diffs cleanly under version control. ` + "`--manifest`" + ` adds a
checksum sidecar for handoffs.

Import merges by default: incoming recipes are added, and an id that
collides with a different stored recipe gets remapped to a fresh one.
Identical duplicates are skipped.

## When the store is corrupt

A damaged store fails loudly rather than exporting half a vault.
Recovery is an import in replace mode from a known-good artifact:

` + "```bash" + `
cv import -i CyberChefExport.json --replace
` + "```" + `

## Configuration

` + "```bash" + `
cv config set notify.channel log
cv config set export.manifest true
cv config list
` + "```" + `

Every key also answers to environment variables: ` + "`CV_NOTIFY_CHANNEL`" + `
or ` + "`CHEFVAULT_NOTIFY_CHANNEL`" + `, with the short form winning.

## Scripting

Every command takes ` + "`--json`" + ` for machine-readable output, and
errors become ` + "`{\"error\": ..., \"code\": ...}`" + ` on stderr. Set
` + "`CV_AGENT=1`" + ` to force plain, pager-free output for tooling.`

var guideCmd = &cobra.Command{
	Use:     "guide",
	GroupID: groupSetup,
	Short:   "Show the user guide",
	Long:    `Show a walkthrough of saving, sharing, and recovering recipes.`,
	Run: func(cmd *cobra.Command, _ []string) {
		noPager, _ := cmd.Flags().GetBool("no-pager")
		rendered := ui.RenderMarkdown(guideContent)
		if err := ui.ToPager(rendered, ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("%v", err)
		}
	},
}

func init() {
	guideCmd.Flags().Bool("no-pager", false, "Print directly without the pager")
	rootCmd.AddCommand(guideCmd)
}
