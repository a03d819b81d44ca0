package factory

import (
	"context"

	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/storage"
	"github.com/stackchef/chefvault/internal/storage/filekv"
	"github.com/stackchef/chefvault/internal/storage/memory"
	"github.com/stackchef/chefvault/internal/storage/sqlitekv"
)

func init() {
	// The file backend takes the vault directory and keeps its document at
	// a fixed name inside it.
	RegisterBackend(configfile.BackendFile, func(_ context.Context, path string) (storage.KV, error) {
		return filekv.Open(path), nil
	})

	RegisterBackend(configfile.BackendSQLite, func(ctx context.Context, path string) (storage.KV, error) {
		return sqlitekv.New(ctx, path)
	})

	RegisterBackend(configfile.BackendMemory, func(_ context.Context, _ string) (storage.KV, error) {
		return memory.New(), nil
	})
}
