// Package chefvault provides a minimal public API for embedding the recipe
// vault in other Go programs.
//
// Most integrations need Open plus the Store methods; Export and Import move
// whole collections. The cv CLI is a thin layer over these same calls, so
// anything it does can be scripted from Go through this package.
package chefvault

import (
	"context"

	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/export"
	"github.com/stackchef/chefvault/internal/importer"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/platform/localfs"
	"github.com/stackchef/chefvault/internal/storage/factory"
	"github.com/stackchef/chefvault/internal/telemetry"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/vault"
)

// Core types for working with recipes
type (
	Recipe       = types.Recipe
	Store        = vault.Store
	ExportResult = export.Result
	ImportResult = importer.Result
	ImportMode   = importer.Mode
)

// Import modes
const (
	ImportMerge   = importer.ModeMerge
	ImportReplace = importer.ModeReplace
)

// ExportFileName is the fixed artifact name CyberChef produces and consumes.
const ExportFileName = payload.ExportFileName

// Sentinel errors, matchable with errors.Is through any wrapping.
var (
	ErrRecipeNotFound   = vault.ErrRecipeNotFound
	ErrCorruptStore     = vault.ErrCorruptStore
	ErrMalformedPayload = payload.ErrMalformedPayload
)

// Open opens the vault at vaultDir on whatever backend its metadata.json
// names, defaulting to the file backend when the file is absent. The caller
// owns the returned store and must Close it.
func Open(ctx context.Context, vaultDir string) (*Store, error) {
	kv, err := factory.NewFromConfig(ctx, vaultDir)
	if err != nil {
		return nil, err
	}
	return vault.New(telemetry.WrapKV(kv), vaultDir), nil
}

// FindVaultDir locates the vault for the current context: CHEFVAULT_DIR
// first, then .chefvault/ in the working directory or any ancestor, then the
// per-user vault. Returns "" when none exists.
func FindVaultDir() string {
	return discovery.FindVaultDir()
}

// ArtifactPath returns where Export delivers the artifact for the vault at
// vaultDir, honoring the export_dir setting in metadata.json.
func ArtifactPath(vaultDir string) string {
	cfg, err := configfile.Load(vaultDir)
	if err != nil || cfg == nil {
		cfg = configfile.DefaultConfig()
	}
	return cfg.ExportPath(vaultDir, payload.ExportFileName)
}

// Export writes the canonical artifact for store into dir. Repeated exports
// of an unchanged store produce byte-identical artifacts.
func Export(ctx context.Context, store *Store, dir string) (*ExportResult, error) {
	return export.New(store, localfs.New(dir), nil).Export(ctx, export.Options{})
}

// Import applies an exported payload to store. ImportMerge keeps existing
// recipes and remaps colliding ids onto fresh ones; ImportReplace makes the
// payload the entire store contents and is the recovery path for a corrupt
// store.
func Import(ctx context.Context, store *Store, data []byte, mode ImportMode) (*ImportResult, error) {
	return importer.Import(ctx, store, data, importer.Options{Mode: mode})
}
