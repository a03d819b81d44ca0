package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/starters"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/ui"
)

var saveCmd = &cobra.Command{
	Use:     "save [NAME] [RECIPE]",
	Short:   "Save a recipe into the vault",
	GroupID: groupRecipes,
	Long: `Save a recipe into the vault under a new id.

The recipe body can come from a positional argument, a file, a built-in
starter, or stdin. Passing "-" as the body reads stdin explicitly.

Examples:
  cv save "Decode JWT" 'JWT_Decode()'
  cv save "Incident 4012" --file triage.chef
  cv save --starter from-base64
  chef-export | cv save "Pipeline output" -
  cv save --interactive`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			runSaveForm()
			return
		}

		file, _ := cmd.Flags().GetString("file")
		starterKey, _ := cmd.Flags().GetString("starter")

		var starter *starters.Starter
		if starterKey != "" {
			var err error
			starter, err = starters.Get(starterKey, vaultDir)
			if err != nil {
				FatalErrorWithHint(err.Error(), "Run 'cv starters' to list available starters")
			}
		}

		name := ""
		if len(args) > 0 {
			name = strings.TrimSpace(args[0])
		}
		if name == "" && starter != nil {
			name = starter.Name
		}
		if name == "" {
			FatalErrorWithHint("recipe name is required", "Usage: cv save NAME [RECIPE]")
		}

		body := resolveBody(args, file, starter)

		recipe, err := store.SaveRecipe(rootCtx, name, body)
		if err != nil {
			if jsonOutput {
				outputJSONError(err, "save_failed")
			}
			FatalError("%v", err)
		}
		debug.LogEvent("recipe.save", fmt.Sprint(recipe.ID), recipe.Name)

		if jsonOutput {
			outputJSON(recipe)
			return
		}
		printSavedRecipe(recipe)
	},
}

func init() {
	saveCmd.Flags().StringP("file", "f", "", "Read the recipe body from a file")
	saveCmd.Flags().String("starter", "", "Use a built-in starter as the recipe")
	saveCmd.Flags().BoolP("interactive", "i", false, "Fill in the recipe through a terminal form")
	rootCmd.AddCommand(saveCmd)
}

// resolveBody picks the recipe body. Precedence: positional argument,
// --file, starter, piped stdin.
func resolveBody(args []string, file string, starter *starters.Starter) string {
	positional := ""
	if len(args) > 1 {
		positional = args[1]
	}

	if positional == "-" {
		return readStdinBody()
	}
	if positional != "" {
		if file != "" {
			FatalError("recipe body given both as an argument and via --file")
		}
		return positional
	}

	if file != "" {
		data, err := os.ReadFile(file) // #nosec G304 -- user-supplied path is the point of --file
		if err != nil {
			FatalError("reading %s: %v", file, err)
		}
		return strings.TrimSpace(string(data))
	}

	if starter != nil {
		return starter.Body
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return readStdinBody()
	}

	FatalErrorWithHint(
		"no recipe body provided",
		"Pass the body as an argument, use --file or --starter, pipe it on stdin, or run with --interactive",
	)
	return "" // unreachable
}

func readStdinBody() string {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		FatalError("reading stdin: %v", err)
	}
	body := strings.TrimSpace(string(data))
	if body == "" {
		FatalError("stdin was empty")
	}
	return body
}

func printSavedRecipe(recipe *types.Recipe) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Saved recipe #%d: %s\n", green("✓"), recipe.ID, recipe.Name)
	fmt.Printf("  Steps: %s\n", ui.Preview(recipe.Body, 80))
}
