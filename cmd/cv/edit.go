package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/vault"
)

var editCmd = &cobra.Command{
	Use:     "edit ID",
	Short:   "Rename a recipe or replace its body",
	GroupID: groupRecipes,
	Long: `Rename a recipe or replace its body. The id never changes.

Examples:
  cv edit 3 --name "Decode JWT (no verify)"
  cv edit 3 --file revised.chef
  chef-export | cv edit 3`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		newName, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")

		id := parseRecipeID(args[0])

		current, err := store.Get(rootCtx, id)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, errorCode(err))
			}
			if errors.Is(err, vault.ErrRecipeNotFound) {
				FatalErrorWithHint(err.Error(), "Run 'cv list' to see stored recipes")
			}
			FatalError("%v", err)
		}

		name := current.Name
		if cmd.Flags().Changed("name") {
			name = strings.TrimSpace(newName)
		}

		body := current.Body
		bodyChanged := false
		switch {
		case file != "":
			data, err := os.ReadFile(file) // #nosec G304 -- user-supplied path is the point of --file
			if err != nil {
				FatalError("reading %s: %v", file, err)
			}
			body = strings.TrimSpace(string(data))
			bodyChanged = true
		case !term.IsTerminal(int(os.Stdin.Fd())):
			body = readStdinBody()
			bodyChanged = true
		}

		if name == current.Name && !bodyChanged {
			FatalErrorWithHint("nothing to change", "Pass --name, --file, or pipe a new body on stdin")
		}

		updated, err := store.UpdateRecipe(rootCtx, id, name, body)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, errorCode(err))
			}
			FatalError("%v", err)
		}
		debug.LogEvent("recipe.edit", fmt.Sprint(id), updated.Name)

		if jsonOutput {
			outputJSON(updated)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Updated recipe #%d: %s\n", green("✓"), updated.ID, updated.Name)
	},
}

func init() {
	editCmd.Flags().String("name", "", "New recipe name")
	editCmd.Flags().StringP("file", "f", "", "Read the new body from a file")
	rootCmd.AddCommand(editCmd)
}
