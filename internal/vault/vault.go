// Package vault implements the recipe store over an injected key-value
// backend. All recipes live under a single fixed key as one canonical JSON
// document; every mutation is a read-modify-write of that document under
// the vault's writer lock.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stackchef/chefvault/internal/idgen"
	"github.com/stackchef/chefvault/internal/lockfile"
	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/storage"
	"github.com/stackchef/chefvault/internal/types"
)

var (
	// ErrCorruptStore is returned when the stored document exists but
	// cannot be decoded. The store is never silently reset; recovery is
	// an explicit ReplaceAll.
	ErrCorruptStore = errors.New("recipe store is corrupt")

	// ErrRecipeNotFound is returned when no recipe has the requested id.
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Store is the recipe store. Reads are lock-free; writes serialize through
// the vault's writer lock when a lock directory is configured.
type Store struct {
	kv          storage.KV
	lockDir     string
	lockTimeout time.Duration
}

// New returns a Store over kv. lockDir is the vault directory whose writer
// lock serializes mutations across processes; empty disables inter-process
// locking (memory backend, tests).
func New(kv storage.KV, lockDir string) *Store {
	return &Store{
		kv:          kv,
		lockDir:     lockDir,
		lockTimeout: lockfile.DefaultAcquireTimeout,
	}
}

// SetLockTimeout overrides how long writes wait for a busy vault lock.
func (s *Store) SetLockTimeout(d time.Duration) {
	s.lockTimeout = d
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

// withLock runs fn while holding the vault writer lock. fn performs the
// full read-modify-write cycle so id allocation cannot race.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if s.lockDir == "" {
		return fn()
	}
	lock, err := lockfile.Acquire(ctx, s.lockDir, s.lockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()
	return fn()
}

// LoadAll returns every saved recipe in stored order. An absent document is
// an empty collection, not an error. A document that exists but cannot be
// decoded surfaces as ErrCorruptStore.
func (s *Store) LoadAll(ctx context.Context) ([]types.Recipe, error) {
	doc, err := s.kv.Get(ctx, payload.StorageKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recipe store: %w", err)
	}

	recipes, err := payload.Decode([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return recipes, nil
}

// ReplaceAll validates recipes and writes them as the entire store
// contents. It is the lone writer primitive and works even when the
// current document is corrupt, which makes it the recovery path.
func (s *Store) ReplaceAll(ctx context.Context, recipes []types.Recipe) error {
	if err := types.ValidateCollection(recipes); err != nil {
		return err
	}
	return s.withLock(ctx, func() error {
		return s.writeAll(ctx, recipes)
	})
}

// writeAll encodes and stores recipes. Callers hold the writer lock.
func (s *Store) writeAll(ctx context.Context, recipes []types.Recipe) error {
	data, err := payload.Encode(recipes)
	if err != nil {
		return fmt.Errorf("encoding recipe store: %w", err)
	}
	if err := s.kv.Set(ctx, payload.StorageKey, string(data)); err != nil {
		return fmt.Errorf("writing recipe store: %w", err)
	}
	return nil
}

// SaveRecipe appends a new recipe with a freshly allocated id and returns
// it. The load, allocation, and write happen under one lock acquisition so
// concurrent saves cannot mint the same id.
func (s *Store) SaveRecipe(ctx context.Context, name, body string) (*types.Recipe, error) {
	var saved types.Recipe
	err := s.withLock(ctx, func() error {
		recipes, err := s.LoadAll(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		saved = types.Recipe{
			ID:        idgen.Next(recipes),
			Name:      name,
			Body:      body,
			CreatedAt: &now,
			UpdatedAt: &now,
		}
		if err := saved.Validate(); err != nil {
			return err
		}

		return s.writeAll(ctx, append(recipes, saved))
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateRecipe rewrites the name and body of the recipe with the given id,
// preserving its id and position in the collection.
func (s *Store) UpdateRecipe(ctx context.Context, id int64, name, body string) (*types.Recipe, error) {
	var updated types.Recipe
	err := s.withLock(ctx, func() error {
		recipes, err := s.LoadAll(ctx)
		if err != nil {
			return err
		}

		idx := indexOf(recipes, id)
		if idx < 0 {
			return fmt.Errorf("%w: id %d", ErrRecipeNotFound, id)
		}

		now := time.Now().UTC()
		recipes[idx].Name = name
		recipes[idx].Body = body
		recipes[idx].UpdatedAt = &now
		if err := recipes[idx].Validate(); err != nil {
			return err
		}
		updated = recipes[idx].Clone()

		return s.writeAll(ctx, recipes)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteRecipe removes the recipe with the given id.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	return s.withLock(ctx, func() error {
		recipes, err := s.LoadAll(ctx)
		if err != nil {
			return err
		}

		idx := indexOf(recipes, id)
		if idx < 0 {
			return fmt.Errorf("%w: id %d", ErrRecipeNotFound, id)
		}

		return s.writeAll(ctx, append(recipes[:idx], recipes[idx+1:]...))
	})
}

// Get returns the recipe with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*types.Recipe, error) {
	recipes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(recipes, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: id %d", ErrRecipeNotFound, id)
	}
	r := recipes[idx].Clone()
	return &r, nil
}

// Count returns the number of saved recipes.
func (s *Store) Count(ctx context.Context) (int, error) {
	recipes, err := s.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(recipes), nil
}

func indexOf(recipes []types.Recipe, id int64) int {
	for i := range recipes {
		if recipes[i].ID == id {
			return i
		}
	}
	return -1
}
