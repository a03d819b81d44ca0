package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/starters"
)

// runSaveForm collects a recipe through an interactive terminal form.
// Tab moves between fields, Enter submits, Ctrl+C cancels.
func runSaveForm() {
	var (
		name       string
		body       string
		starterKey string
	)

	starterOptions := []huh.Option[string]{
		huh.NewOption("(none)", ""),
	}
	if all, err := starters.GetAll(vaultDir); err == nil {
		for _, key := range sortedStarterKeys(all) {
			label := fmt.Sprintf("%s - %s", all[key].Name, all[key].Description)
			starterOptions = append(starterOptions, huh.NewOption(label, key))
		}
	} else {
		WarnError("loading starters: %v", err)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("What this recipe does (required)").
				Placeholder("e.g., Decode JWT from auth header").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					if len(s) > 500 {
						return fmt.Errorf("name must be 500 characters or less")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Starter").
				Description("Base the recipe on a starter (optional)").
				Options(starterOptions...).
				Value(&starterKey),

			huh.NewText().
				Title("Recipe").
				Description("Operation chain; leave empty to use the starter's").
				Placeholder("From_Base64('A-Za-z0-9+/=',true,false)").
				CharLimit(10000).
				Value(&body),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this recipe?").
				Affirmative("Save").
				Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(os.Stderr, "Recipe save cancelled.")
			os.Exit(0)
		}
		FatalError("form error: %v", err)
	}

	name = strings.TrimSpace(name)
	body = strings.TrimSpace(body)
	if body == "" && starterKey != "" {
		if starter, err := starters.Get(starterKey, vaultDir); err == nil {
			body = starter.Body
		}
	}
	if body == "" {
		FatalError("recipe body is required")
	}

	recipe, err := store.SaveRecipe(rootCtx, name, body)
	if err != nil {
		FatalError("%v", err)
	}
	debug.LogEvent("recipe.save", fmt.Sprint(recipe.ID), recipe.Name)

	if jsonOutput {
		outputJSON(recipe)
		return
	}
	printSavedRecipe(recipe)
}

func sortedStarterKeys(all map[string]starters.Starter) []string {
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
