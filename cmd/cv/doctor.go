package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/lockfile"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/storage/factory"
	"github.com/stackchef/chefvault/internal/telemetry"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/ui"
	"github.com/stackchef/chefvault/internal/vault"
	"golang.org/x/sync/errgroup"
)

// Status constants for doctor checks
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// Check categories, in display order.
const (
	categoryVault   = "Vault"
	categoryStore   = "Store"
	categoryExport  = "Export"
	categoryRuntime = "Runtime"
)

var doctorCategoryOrder = []string{categoryVault, categoryStore, categoryExport, categoryRuntime}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // statusOK, statusWarning, or statusError
	Message  string `json:"message"`
	Detail   string `json:"detail,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Category string `json:"category,omitempty"`
}

type doctorResult struct {
	Path       string        `json:"path"`
	Checks     []doctorCheck `json:"checks"`
	OverallOK  bool          `json:"overall_ok"`
	CLIVersion string        `json:"cli_version"`
}

var doctorCmd = &cobra.Command{
	Use:     "doctor [path]",
	GroupID: groupSetup,
	Short:   "Check vault health",
	Long: `Sanity check the vault for the current directory or a given path.

This command checks:
  - If .chefvault/ exists
  - metadata.json is well-formed and names a known backend
  - The store document decodes and every recipe is valid
  - Whether the vault lock is held
  - The export directory is writable
  - The export artifact is current

Exits non-zero when any check fails, so it slots into CI and shell
hooks.

Examples:
  cv doctor              # Check current directory
  cv doctor /path/to/project
  cv doctor --json       # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		checkPath := "."
		if len(args) > 0 {
			checkPath = args[0]
		}
		absPath, err := filepath.Abs(checkPath)
		if err != nil {
			FatalError("resolving path: %v", err)
		}

		result := runDiagnostics(absPath)

		if jsonOutput {
			outputJSON(result)
		} else {
			printDiagnostics(result)
		}

		if !result.OverallOK {
			os.Exit(1)
		}
	},
}

func runDiagnostics(path string) doctorResult {
	result := doctorResult{
		Path:       path,
		CLIVersion: FullVersionString(),
		OverallOK:  true,
	}

	dir, installCheck := checkVaultLocation(path)
	result.Checks = append(result.Checks, installCheck)
	if installCheck.Status != statusOK {
		result.OverallOK = false
		return result
	}

	// The store group holds its checks in one function so only a single
	// handle is open; the groups themselves are independent and run
	// concurrently.
	groups := []func() []doctorCheck{
		func() []doctorCheck { return []doctorCheck{checkMetadata(dir)} },
		func() []doctorCheck { return checkStore(dir) },
		func() []doctorCheck { return []doctorCheck{checkExportDir(dir), checkExportArtifact(dir)} },
		func() []doctorCheck { return []doctorCheck{checkTelemetry()} },
	}

	grouped := make([][]doctorCheck, len(groups))
	var eg errgroup.Group
	for i, group := range groups {
		eg.Go(func() error {
			grouped[i] = group()
			return nil
		})
	}
	_ = eg.Wait() // checks report through their result structs, never errors

	for _, checks := range grouped {
		for _, check := range checks {
			result.Checks = append(result.Checks, check)
			if check.Status == statusError {
				result.OverallOK = false
			}
		}
	}
	return result
}

// checkVaultLocation finds the vault to diagnose: path/.chefvault first,
// then the normal discovery chain (CHEFVAULT_DIR, ancestors, home).
func checkVaultLocation(path string) (string, doctorCheck) {
	check := doctorCheck{Name: "vault directory", Category: categoryVault}

	dir := filepath.Join(path, discovery.VaultDirName)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		check.Status = statusOK
		check.Message = dir
		return dir, check
	}

	if found := discovery.FindVaultDir(); found != "" {
		check.Status = statusOK
		check.Message = found
		check.Detail = "located via ancestor search"
		return found, check
	}

	check.Status = statusError
	check.Message = "no .chefvault directory found"
	check.Fix = "Run 'cv init' to create one"
	return "", check
}

func checkMetadata(dir string) doctorCheck {
	check := doctorCheck{Name: "metadata.json", Category: categoryVault}

	cfg, err := configfile.Load(dir)
	if err != nil {
		check.Status = statusError
		check.Message = err.Error()
		check.Fix = "Run 'cv init --force' to rewrite it"
		return check
	}
	if cfg == nil {
		check.Status = statusWarning
		check.Message = "missing, file backend assumed"
		check.Fix = "Run 'cv init --force' to write it"
		return check
	}

	switch cfg.GetBackend() {
	case configfile.BackendFile, configfile.BackendSQLite, configfile.BackendMemory:
		check.Status = statusOK
		check.Message = "backend: " + cfg.GetBackend()
	default:
		check.Status = statusError
		check.Message = fmt.Sprintf("unknown backend %q", cfg.Backend)
		check.Fix = "Edit .chefvault/metadata.json or re-run 'cv init --force'"
	}
	return check
}

// checkStore inspects the lock and then the store contents. The lock check
// must come first: LoadAll takes the lock itself, and doctor reporting its
// own transient hold would be noise.
func checkStore(dir string) []doctorCheck {
	lockCheck := checkVaultLock(dir)

	kv, err := factory.NewFromConfig(rootCtx, dir)
	if err != nil {
		return []doctorCheck{lockCheck, {
			Name:     "store document",
			Status:   statusError,
			Message:  err.Error(),
			Fix:      "Check metadata.json and the store file permissions",
			Category: categoryStore,
		}}
	}
	st := vault.New(kv, dir)
	defer func() { _ = st.Close() }()

	recipes, err := st.LoadAll(rootCtx)
	if err != nil {
		check := doctorCheck{
			Name:     "store document",
			Status:   statusError,
			Message:  err.Error(),
			Category: categoryStore,
		}
		if errors.Is(err, vault.ErrCorruptStore) {
			check.Fix = "Recover with 'cv import --replace' from a known-good export"
		}
		return []doctorCheck{lockCheck, check}
	}

	doc := doctorCheck{
		Name:     "store document",
		Status:   statusOK,
		Message:  fmt.Sprintf("%d recipes", len(recipes)),
		Category: categoryStore,
	}
	if len(recipes) == 1 {
		doc.Message = "1 recipe"
	}

	integrity := doctorCheck{
		Name:     "recipe integrity",
		Status:   statusOK,
		Message:  "ids unique, all recipes valid",
		Category: categoryStore,
	}
	if err := types.ValidateCollection(recipes); err != nil {
		integrity.Status = statusError
		integrity.Message = err.Error()
		integrity.Fix = "Fix the recipe with 'cv edit', or rebuild with 'cv import --replace'"
	}

	return []doctorCheck{lockCheck, doc, integrity}
}

func checkVaultLock(dir string) doctorCheck {
	check := doctorCheck{Name: "vault lock", Status: statusOK, Message: "free", Category: categoryVault}
	if held, pid := lockfile.Holder(dir); held {
		check.Status = statusWarning
		check.Message = fmt.Sprintf("held by pid %d", pid)
		check.Fix = fmt.Sprintf("If no cv process is running, remove %s", filepath.Join(dir, lockfile.LockFileName))
	}
	return check
}

func checkExportDir(vd string) doctorCheck {
	dir := resolveExportDir("", vd)
	check := doctorCheck{Name: "export directory", Status: statusOK, Message: dir, Category: categoryExport}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		check.Detail = "created on first export"
		return check
	}

	probe, err := os.CreateTemp(dir, ".cv-doctor-*")
	if err != nil {
		check.Status = statusError
		check.Message = fmt.Sprintf("%s is not writable", dir)
		check.Detail = err.Error()
		check.Fix = "Fix permissions or point export.dir somewhere writable"
		return check
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return check
}

func checkExportArtifact(vd string) doctorCheck {
	check := doctorCheck{Name: "export artifact", Status: statusOK, Category: categoryExport}

	artifact := filepath.Join(resolveExportDir("", vd), payload.ExportFileName)
	artInfo, err := os.Stat(artifact)
	if os.IsNotExist(err) {
		check.Message = "not exported yet"
		return check
	}
	if err != nil {
		check.Status = statusWarning
		check.Message = err.Error()
		return check
	}

	docPath, ok := storeDocumentPath(vd)
	if !ok {
		check.Message = "memory backend, freshness not tracked"
		return check
	}
	if docInfo, err := os.Stat(docPath); err == nil && docInfo.ModTime().After(artInfo.ModTime()) {
		check.Status = statusWarning
		check.Message = "stale, the vault changed after the last export"
		check.Fix = "Run 'cv export' to refresh it"
		return check
	}

	check.Message = fmt.Sprintf("%s (%s)", payload.ExportFileName, formatAge(artInfo.ModTime()))
	return check
}

func checkTelemetry() doctorCheck {
	check := doctorCheck{Name: "telemetry", Status: statusOK, Category: categoryRuntime}
	if !telemetry.Enabled() {
		check.Message = "disabled"
		return check
	}
	check.Message = "enabled"
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint != "" {
		check.Detail = "metrics to " + endpoint
	} else {
		check.Detail = "stdout exporters"
	}
	return check
}

func printDiagnostics(result doctorResult) {
	fmt.Printf("\ncv doctor %s\n\n", result.CLIVersion)

	byCategory := make(map[string][]doctorCheck)
	for _, check := range result.Checks {
		byCategory[check.Category] = append(byCategory[check.Category], check)
	}

	var passCount, warnCount, failCount int
	var findings []doctorCheck

	for _, category := range doctorCategoryOrder {
		checks := byCategory[category]
		if len(checks) == 0 {
			continue
		}

		fmt.Println(ui.RenderHeader(category))
		for _, check := range checks {
			var statusIcon string
			switch check.Status {
			case statusOK:
				statusIcon = ui.RenderPassIcon()
				passCount++
			case statusWarning:
				statusIcon = ui.RenderWarnIcon()
				warnCount++
				findings = append(findings, check)
			case statusError:
				statusIcon = ui.RenderFailIcon()
				failCount++
				findings = append(findings, check)
			}

			fmt.Printf("  %s  %s", statusIcon, check.Name)
			if check.Message != "" {
				fmt.Printf("%s", ui.RenderMuted(" "+check.Message))
			}
			fmt.Println()

			if check.Detail != "" {
				fmt.Printf("     %s\n", ui.RenderMuted(ui.DetailPrefix+check.Detail))
			}
		}
		fmt.Println()
	}

	fmt.Println(ui.RenderSeparator())
	fmt.Printf("%s %d passed  %s %d warnings  %s %d failed\n",
		ui.RenderPassIcon(), passCount,
		ui.RenderWarnIcon(), warnCount,
		ui.RenderFailIcon(), failCount,
	)

	if len(findings) == 0 {
		fmt.Println()
		fmt.Println(ui.RenderPass("✓ All checks passed"))
		return
	}

	fmt.Println()
	fmt.Println(ui.RenderWarn(ui.IconWarn + "  WARNINGS"))

	// Errors first, warnings after, original order within a severity.
	slices.SortStableFunc(findings, func(a, b doctorCheck) int {
		if a.Status == statusError && b.Status != statusError {
			return -1
		}
		if a.Status != statusError && b.Status == statusError {
			return 1
		}
		return 0
	})

	for i, check := range findings {
		line := fmt.Sprintf("%s: %s", check.Name, check.Message)
		if check.Status == statusError {
			fmt.Printf("  %s  %s %s\n", ui.RenderFailIcon(), ui.RenderFail(fmt.Sprintf("%d.", i+1)), ui.RenderFail(line))
		} else {
			fmt.Printf("  %s  %s %s\n", ui.RenderWarnIcon(), ui.RenderWarn(fmt.Sprintf("%d.", i+1)), line)
		}
		if check.Fix != "" {
			fmt.Printf("        %s\n", ui.RenderMuted(ui.DetailPrefix+check.Fix))
		}
	}
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
