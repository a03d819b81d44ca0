// Package filekv implements the vault's key-value surface as a single JSON
// document on disk.
//
// All keys live in one file (store.json by default) mapping key to string
// value. Writes are read-modify-write under a process-local mutex and land
// atomically via a temp file and rename, so readers never observe a partial
// document. A missing file reads as "no value stored", not as an error.
package filekv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stackchef/chefvault/internal/storage"
	"github.com/stackchef/chefvault/internal/utils"
)

// StoreFileName is the default document name inside a vault directory.
const StoreFileName = "store.json"

// Store is a file-backed storage.KV.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store persisting to the given file path. The file is created
// lazily on the first Set.
func New(path string) *Store {
	return &Store{path: path}
}

// Open creates a store on the default document inside vaultDir.
func Open(vaultDir string) *Store {
	return New(filepath.Join(vaultDir, StoreFileName))
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- path is constructed from the vault dir
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing store: %w", err)
	}
	if doc == nil {
		doc = map[string]string{}
	}
	return doc, nil
}

func (s *Store) write(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	// If the document is a symlink, write through to the target so the link
	// survives the rename.
	target, err := utils.ResolveForWrite(s.path)
	if err != nil {
		return fmt.Errorf("resolving store path: %w", err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	base := filepath.Base(target)
	tempFile, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp store file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = tempFile.Close()    // Best effort: may already be closed before rename
		_ = os.Remove(tempPath) // Best effort: may already be renamed
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}

	// Close before rename (required on Windows; double-close in defer is harmless)
	_ = tempFile.Close()

	if err := utils.DefaultRenameRetry(tempPath, target); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}

	if err := os.Chmod(target, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to set store permissions: %v\n", err)
	}

	return nil
}

// Get returns the value stored under key, or storage.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := doc[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = value
	return s.write(doc)
}

// Delete removes the value stored under key. Deleting an absent key is a
// no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.write(doc)
}

// Close is a no-op for the file backend.
func (s *Store) Close() error {
	return nil
}
