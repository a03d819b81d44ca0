package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/debug"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/starters"
	"github.com/stackchef/chefvault/internal/ui"
)

var startersCmd = &cobra.Command{
	Use:     "starters",
	GroupID: groupSetup,
	Short:   "Manage recipe starters",
	Long: `Manage recipe starters - ready-made recipes for common tasks.

Built-in starters ship with cv. User starters live in
.chefvault/starters.toml and override built-ins with the same key.

Use a starter when saving:
  cv save --starter jwt-decode

Commands:
  list   List available starters (default)
  show   Show a starter's recipe body
  add    Add a user starter from a file`,
	Run: runStartersList,
}

var startersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available starters",
	Run:   runStartersList,
}

var startersShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a starter's recipe body",
	Args:  cobra.ExactArgs(1),
	Run:   runStartersShow,
}

var startersAddCmd = &cobra.Command{
	Use:   "add NAME FILE",
	Short: "Add a user starter from a file",
	Long: `Add a starter to .chefvault/starters.toml from a recipe file.

The starter key is lowercased. A key that matches a built-in starter
shadows it.

Examples:
  cv starters add rot13 rot13.recipe
  cv starters add triage triage.recipe --description "First-pass IOC triage"`,
	Args: cobra.ExactArgs(2),
	Run:  runStartersAdd,
}

// starterEntry is a starter in list output.
type starterEntry struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// startersVaultDir resolves the vault directory without requiring one.
// Built-in starters work with no vault at all.
func startersVaultDir() string {
	if vaultDir != "" {
		return vaultDir
	}
	return discovery.FindVaultDir()
}

func runStartersList(cmd *cobra.Command, args []string) {
	dir := startersVaultDir()

	all, err := starters.GetAll(dir)
	if err != nil {
		WarnError("loading user starters: %v", err)
		all = starters.Builtin
	}
	user, _ := starters.LoadUserStarters(dir)

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make([]starterEntry, 0, len(all))
	for _, name := range names {
		s := all[name]
		source := "builtin"
		if _, ok := user[name]; ok {
			source = "user"
		}
		entries = append(entries, starterEntry{
			Key:         name,
			Name:        s.Name,
			Description: s.Description,
			Source:      source,
		})
	}

	if jsonOutput {
		outputJSON(entries)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No starters found.")
		return
	}

	fmt.Printf("Starters (%d)\n\n", len(entries))

	printStarterGroup("Built-in:", entries, "builtin")
	printStarterGroup("User (starters.toml):", entries, "user")
}

func printStarterGroup(header string, entries []starterEntry, source string) {
	var group []starterEntry
	for _, e := range entries {
		if e.Source == source {
			group = append(group, e)
		}
	}
	if len(group) == 0 {
		return
	}

	fmt.Println(header)
	for _, e := range group {
		fmt.Printf("  %-16s %s\n", e.Key, ui.RenderMuted(e.Description))
	}
	fmt.Println()
}

func runStartersShow(cmd *cobra.Command, args []string) {
	dir := startersVaultDir()

	key := strings.ToLower(strings.Trim(args[0], "-"))
	starter, err := starters.Get(key, dir)
	if err != nil {
		if jsonOutput {
			outputJSONError(err, "unknown_starter")
		}
		FatalErrorWithHint(err.Error(), "Run 'cv starters' to list available starters")
	}

	source := "builtin"
	if user, _ := starters.LoadUserStarters(dir); user != nil {
		if _, ok := user[key]; ok {
			source = "user"
		}
	}

	if jsonOutput {
		outputJSON(starterEntry{
			Key:         key,
			Name:        starter.Name,
			Description: starter.Description,
			Source:      source,
		})
		return
	}

	fmt.Printf("%s %s\n", starter.Name, ui.RenderMuted("("+key+", "+source+")"))
	if starter.Description != "" {
		fmt.Println(ui.RenderMuted(starter.Description))
	}
	fmt.Println()
	fmt.Println("Recipe:")
	for _, line := range strings.Split(starter.Body, "\n") {
		fmt.Println(ui.Indent + line)
	}
}

func runStartersAdd(cmd *cobra.Command, args []string) {
	dir := startersVaultDir()
	if dir == "" {
		FatalErrorWithHint("no vault found", "Run 'cv init' to create one")
	}

	key := strings.ToLower(strings.Trim(args[0], "-"))
	if key == "" {
		FatalError("starter name is required")
	}

	data, err := os.ReadFile(args[1]) // #nosec G304 -- user-supplied path is the point of the FILE argument
	if err != nil {
		FatalError("reading %s: %v", args[1], err)
	}
	body := strings.TrimSpace(string(data))
	if body == "" {
		FatalError("%s is empty", args[1])
	}

	displayName, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	starter := starters.Starter{
		Name:        displayName,
		Body:        body,
		Description: description,
	}
	if err := starters.SaveUserStarter(dir, key, starter); err != nil {
		FatalError("saving starter: %v", err)
	}

	debug.LogEvent("starter.add", "", key)

	if jsonOutput {
		outputJSON(map[string]string{
			"starter": key,
			"path":    filepath.Join(dir, "starters.toml"),
		})
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	if starters.IsBuiltin(key) {
		fmt.Printf("%s Added starter %q (shadows the built-in)\n", green("✓"), key)
		return
	}
	fmt.Printf("%s Added starter %q\n", green("✓"), key)
}

func init() {
	startersAddCmd.Flags().String("name", "", "Display name (default: the starter key)")
	startersAddCmd.Flags().String("description", "", "Brief description shown in listings")

	startersCmd.AddCommand(startersListCmd)
	startersCmd.AddCommand(startersShowCmd)
	startersCmd.AddCommand(startersAddCmd)
	rootCmd.AddCommand(startersCmd)
}
