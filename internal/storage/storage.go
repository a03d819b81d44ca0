// Package storage defines the key-value persistence surface the recipe vault
// is built on.
//
// The vault treats persistence as an injected capability: any backend that
// can store the payload text under a fixed key will do. Backends register
// themselves with the factory subpackage and are selected through the vault's
// metadata.json.
package storage

import (
	"context"
	"errors"
)

// Common errors returned by KV implementations.
var (
	// ErrKeyNotFound is returned by Get when the key has no stored value.
	// An absent value is a normal condition, not corruption.
	ErrKeyNotFound = errors.New("key not found")
)

// KV is the persistence surface. Implementations must be safe for concurrent
// use by multiple goroutines.
type KV interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value. The write
	// must be atomic: readers never observe a partially written value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the value stored under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources. The KV must not be used afterwards.
	Close() error
}
