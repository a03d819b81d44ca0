package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackchef/chefvault/internal/ui"
	"github.com/stackchef/chefvault/internal/vault"
)

var showCmd = &cobra.Command{
	Use:     "show ID",
	Short:   "Show a recipe in full",
	GroupID: groupRecipes,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noPager, _ := cmd.Flags().GetBool("no-pager")

		id := parseRecipeID(args[0])
		recipe, err := store.Get(rootCtx, id)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, errorCode(err))
			}
			if errors.Is(err, vault.ErrRecipeNotFound) {
				FatalErrorWithHint(err.Error(), "Run 'cv list' to see stored recipes")
			}
			FatalError("%v", err)
		}

		if jsonOutput {
			outputJSON(recipe)
			return
		}

		var buf strings.Builder
		buf.WriteString(fmt.Sprintf("%s %s\n", ui.RenderID(fmt.Sprintf("#%d", recipe.ID)), recipe.Name))
		buf.WriteString(ui.RenderSeparator())
		buf.WriteByte('\n')
		if recipe.CreatedAt != nil {
			buf.WriteString(fmt.Sprintf("Created: %s %s\n",
				recipe.CreatedAt.Local().Format("2006-01-02 15:04"),
				ui.RenderMuted("("+formatAge(*recipe.CreatedAt)+")")))
		}
		if recipe.UpdatedAt != nil && !sameInstant(recipe.UpdatedAt, recipe.CreatedAt) {
			buf.WriteString(fmt.Sprintf("Updated: %s %s\n",
				recipe.UpdatedAt.Local().Format("2006-01-02 15:04"),
				ui.RenderMuted("("+formatAge(*recipe.UpdatedAt)+")")))
		}
		buf.WriteString("Recipe:\n")
		buf.WriteString(ui.Indent + strings.ReplaceAll(ui.WrapText(recipe.Body, 96), "\n", "\n"+ui.Indent))
		buf.WriteByte('\n')

		if err := ui.ToPager(buf.String(), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("pager: %v", err)
		}
	},
}

func init() {
	showCmd.Flags().Bool("no-pager", false, "Never pipe output through a pager")
	rootCmd.AddCommand(showCmd)
}

// parseRecipeID parses a positional id argument, tolerating a leading '#'.
func parseRecipeID(arg string) int64 {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		FatalError("invalid recipe id %q (expected a positive integer)", arg)
	}
	return id
}

// errorCode maps sentinel errors to stable codes for --json consumers.
func errorCode(err error) string {
	switch {
	case errors.Is(err, vault.ErrRecipeNotFound):
		return "not_found"
	case errors.Is(err, vault.ErrCorruptStore):
		return "corrupt_store"
	default:
		return ""
	}
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
