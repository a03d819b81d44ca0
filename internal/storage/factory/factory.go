// Package factory creates storage backends based on configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/storage"
)

// BackendFactory is a function that creates a storage backend. The meaning
// of path depends on the backend; the memory backend ignores it.
type BackendFactory func(ctx context.Context, path string) (storage.KV, error)

// backendRegistry holds registered backend factories
var backendRegistry = make(map[string]BackendFactory)

// RegisterBackend registers a storage backend factory
func RegisterBackend(name string, factory BackendFactory) {
	backendRegistry[name] = factory
}

// New creates a storage backend based on the backend type. An empty backend
// selects the default file store.
func New(ctx context.Context, backend, path string) (storage.KV, error) {
	if backend == "" {
		backend = configfile.BackendFile
	}
	if factory, ok := backendRegistry[backend]; ok {
		return factory(ctx, path)
	}
	return nil, fmt.Errorf("unknown storage backend: %s (supported: file, sqlite, memory)", backend)
}

// NewFromConfig creates a storage backend based on the metadata.json
// configuration. vaultDir is the path to the .chefvault directory.
func NewFromConfig(ctx context.Context, vaultDir string) (storage.KV, error) {
	cfg, err := configfile.Load(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg == nil {
		cfg = configfile.DefaultConfig()
	}

	backend := cfg.GetBackend()
	switch backend {
	case configfile.BackendSQLite:
		return New(ctx, backend, cfg.DatabasePath(vaultDir))
	case configfile.BackendFile, configfile.BackendMemory:
		return New(ctx, backend, vaultDir)
	default:
		return nil, fmt.Errorf("unknown storage backend in config: %s", backend)
	}
}

// GetBackendFromConfig returns the backend type from metadata.json
func GetBackendFromConfig(vaultDir string) string {
	cfg, err := configfile.Load(vaultDir)
	if err != nil || cfg == nil {
		return configfile.BackendFile
	}
	return cfg.GetBackend()
}
