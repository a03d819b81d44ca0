package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/ui"
	"github.com/stackchef/chefvault/internal/vault"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Short:   "Delete a recipe from the vault",
	GroupID: groupRecipes,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

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

		if !force {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				FatalErrorWithHint(
					fmt.Sprintf("refusing to delete recipe #%d without confirmation", id),
					"Re-run with --force to delete non-interactively",
				)
			}
			fmt.Printf("Delete recipe #%d %q (%s)? [y/N] ", recipe.ID, recipe.Name, ui.Preview(recipe.Body, 40))
			var response string
			_, _ = fmt.Scanln(&response)
			response = strings.ToLower(response)
			if response != "y" && response != "yes" {
				fmt.Println("Canceled")
				return
			}
		}

		if err := store.DeleteRecipe(rootCtx, id); err != nil {
			if jsonOutput {
				outputJSONError(err, errorCode(err))
			}
			FatalError("%v", err)
		}
		debug.LogEvent("recipe.delete", fmt.Sprint(id), recipe.Name)

		if jsonOutput {
			outputJSON(map[string]interface{}{
				"deleted": id,
				"name":    recipe.Name,
			})
			return
		}
		fmt.Printf("Deleted recipe #%d: %s\n", id, recipe.Name)
	},
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
	rootCmd.AddCommand(deleteCmd)
}
