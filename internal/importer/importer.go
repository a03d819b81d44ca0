// Package importer loads exported recipe payloads back into the store.
package importer

import (
	"context"
	"fmt"

	"github.com/stackchef/chefvault/internal/idgen"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/types"
)

// Mode selects how an import treats the existing collection.
type Mode string

const (
	// ModeMerge keeps existing recipes and appends the incoming ones,
	// remapping any colliding id to a fresh one. Nothing is overwritten.
	ModeMerge Mode = "merge"

	// ModeReplace makes the incoming payload the entire store contents.
	// It does not read the current document first, so it also recovers a
	// corrupt store.
	ModeReplace Mode = "replace"
)

// RecipeStore is the slice of the vault the importer needs.
type RecipeStore interface {
	LoadAll(ctx context.Context) ([]types.Recipe, error)
	ReplaceAll(ctx context.Context, recipes []types.Recipe) error
}

// Options contains import configuration
type Options struct {
	Mode   Mode // empty defaults to merge
	DryRun bool // Preview changes without applying them
}

// Result contains statistics about the import operation
type Result struct {
	Mode       Mode            `json:"mode"`
	Imported   int             `json:"imported"`   // recipes added to the store
	Total      int             `json:"total"`      // store size after import
	Collisions int             `json:"collisions"` // incoming ids that collided
	IDMapping  map[int64]int64 `json:"id_mapping,omitempty"`
	DryRun     bool            `json:"dry_run,omitempty"`
}

// Import decodes data and applies it to the store per opts. A payload that
// fails validation leaves the store untouched. Merge surfaces a corrupt
// store instead of guessing; replace is the recovery path.
func Import(ctx context.Context, store RecipeStore, data []byte, opts Options) (*Result, error) {
	if opts.Mode == "" {
		opts.Mode = ModeMerge
	}

	incoming, err := payload.Decode(data)
	if err != nil {
		return nil, err
	}

	switch opts.Mode {
	case ModeReplace:
		return importReplace(ctx, store, incoming, opts)
	case ModeMerge:
		return importMerge(ctx, store, incoming, opts)
	default:
		return nil, fmt.Errorf("unknown import mode: %s", opts.Mode)
	}
}

func importReplace(ctx context.Context, store RecipeStore, incoming []types.Recipe, opts Options) (*Result, error) {
	result := &Result{
		Mode:     ModeReplace,
		Imported: len(incoming),
		Total:    len(incoming),
		DryRun:   opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}
	if err := store.ReplaceAll(ctx, incoming); err != nil {
		return nil, err
	}
	return result, nil
}

func importMerge(ctx context.Context, store RecipeStore, incoming []types.Recipe, opts Options) (*Result, error) {
	existing, err := store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Mode:      ModeMerge,
		IDMapping: make(map[int64]int64),
		DryRun:    opts.DryRun,
	}

	merged := types.CloneCollection(existing)
	for i := range incoming {
		r := incoming[i].Clone()
		if idgen.Taken(merged, r.ID) {
			// Fresh ids are allocated against the collection as it grows,
			// so a remapped id can itself push a later collision forward.
			fresh := idgen.Next(merged)
			result.IDMapping[r.ID] = fresh
			result.Collisions++
			r.ID = fresh
		}
		merged = append(merged, r)
		result.Imported++
	}
	result.Total = len(merged)

	if opts.DryRun {
		return result, nil
	}
	if err := store.ReplaceAll(ctx, merged); err != nil {
		return nil, err
	}
	return result, nil
}
