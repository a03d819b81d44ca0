package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackchef/chefvault/internal/timeparsing"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recipes in the vault",
	GroupID: groupRecipes,
	Long: `List recipes in the vault.

Time filters accept compact durations (-2d, +6h), natural language
("yesterday", "last monday"), dates (2025-01-02), and RFC3339 stamps.

Examples:
  cv list
  cv list --since -7d
  cv list --since "last monday" --until yesterday
  cv list --sort name --json`,
	Run: func(cmd *cobra.Command, args []string) {
		sinceStr, _ := cmd.Flags().GetString("since")
		untilStr, _ := cmd.Flags().GetString("until")
		sortKey, _ := cmd.Flags().GetString("sort")
		reverse, _ := cmd.Flags().GetBool("reverse")
		noPager, _ := cmd.Flags().GetBool("no-pager")

		var since, until time.Time
		if sinceStr != "" {
			var err error
			since, err = parseTimeFlag(sinceStr)
			if err != nil {
				FatalError("invalid --since value: %v", err)
			}
		}
		if untilStr != "" {
			var err error
			until, err = parseTimeFlag(untilStr)
			if err != nil {
				FatalError("invalid --until value: %v", err)
			}
		}

		recipes, err := store.LoadAll(rootCtx)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, "load_failed")
			}
			FatalError("%v", err)
		}

		recipes = filterByTime(recipes, since, until)
		sortRecipes(recipes, sortKey)
		if reverse {
			slices.Reverse(recipes)
		}

		if jsonOutput {
			if recipes == nil {
				recipes = []types.Recipe{}
			}
			outputJSON(recipes)
			return
		}

		if len(recipes) == 0 {
			if sinceStr != "" || untilStr != "" {
				fmt.Println("No recipes in that time range.")
			} else {
				fmt.Println("No recipes yet. Run 'cv save' to add one.")
			}
			return
		}

		var buf strings.Builder
		renderRecipeList(&buf, recipes)
		if err := ui.ToPager(buf.String(), ui.PagerOptions{NoPager: noPager}); err != nil {
			FatalError("pager: %v", err)
		}
	},
}

func init() {
	listCmd.Flags().String("since", "", "Only recipes touched at or after this time")
	listCmd.Flags().String("until", "", "Only recipes touched at or before this time")
	listCmd.Flags().String("sort", "id", "Sort by: id, name, updated")
	listCmd.Flags().Bool("reverse", false, "Reverse the sort order")
	listCmd.Flags().Bool("no-pager", false, "Never pipe output through a pager")
	rootCmd.AddCommand(listCmd)
}

func parseTimeFlag(s string) (time.Time, error) {
	return timeparsing.ParseRelativeTime(s, time.Now())
}

// recipeTime is the instant used for time filtering and sorting: the last
// update, or creation when the recipe was never edited.
func recipeTime(r *types.Recipe) *time.Time {
	if r.UpdatedAt != nil {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// filterByTime drops recipes outside [since, until]. Recipes without
// timestamps only survive when no filter is active.
func filterByTime(recipes []types.Recipe, since, until time.Time) []types.Recipe {
	if since.IsZero() && until.IsZero() {
		return recipes
	}
	kept := recipes[:0]
	for i := range recipes {
		t := recipeTime(&recipes[i])
		if t == nil {
			continue
		}
		if !since.IsZero() && t.Before(since) {
			continue
		}
		if !until.IsZero() && t.After(until) {
			continue
		}
		kept = append(kept, recipes[i])
	}
	return kept
}

func sortRecipes(recipes []types.Recipe, key string) {
	switch key {
	case "name":
		slices.SortFunc(recipes, func(a, b types.Recipe) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case "updated":
		slices.SortFunc(recipes, func(a, b types.Recipe) int {
			ta, tb := recipeTime(&a), recipeTime(&b)
			switch {
			case ta == nil && tb == nil:
				return cmp.Compare(a.ID, b.ID)
			case ta == nil:
				return 1
			case tb == nil:
				return -1
			}
			return ta.Compare(*tb)
		})
	default:
		slices.SortFunc(recipes, func(a, b types.Recipe) int {
			return cmp.Compare(a.ID, b.ID)
		})
	}
}

func renderRecipeList(buf *strings.Builder, recipes []types.Recipe) {
	buf.WriteString(ui.RenderHeader(fmt.Sprintf("%-6s %-36s %-10s %s", "ID", "NAME", "UPDATED", "STEPS")))
	buf.WriteByte('\n')

	for i := range recipes {
		r := &recipes[i]

		age := "-"
		if t := recipeTime(r); t != nil {
			age = formatAge(*t)
		}

		buf.WriteString(fmt.Sprintf("%s %s %s %s\n",
			ui.RenderID(fmt.Sprintf("%-6s", fmt.Sprintf("#%d", r.ID))),
			fmt.Sprintf("%-36s", ui.TruncateSimple(r.Name, 36)),
			ui.RenderMuted(fmt.Sprintf("%-10s", age)),
			ui.RenderMuted(ui.Preview(r.Body, 40)),
		))
	}

	buf.WriteString(ui.RenderSeparator())
	buf.WriteByte('\n')
	if len(recipes) == 1 {
		buf.WriteString("1 recipe\n")
	} else {
		buf.WriteString(fmt.Sprintf("%d recipes\n", len(recipes)))
	}
}

// formatAge renders a timestamp as a compact relative age.
func formatAge(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
}
