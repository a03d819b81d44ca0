// Package localfs implements the file saver port against a local download
// directory. Minting stages the payload in a temp file beside the
// destination so the final save is a single atomic rename.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stackchef/chefvault/internal/platform"
	"github.com/stackchef/chefvault/internal/utils"
)

// Saver writes resources into a fixed directory.
type Saver struct {
	dir string
}

// New returns a Saver delivering into dir. Empty means the current
// directory.
func New(dir string) *Saver {
	if dir == "" {
		dir = "."
	}
	return &Saver{dir: dir}
}

// Dir returns the delivery directory.
func (s *Saver) Dir() string {
	return s.dir
}

// Mint stages res in a temp file next to the destination and returns the
// temp path as the handle. The staging file carries the final content, so
// Save only has to rename it.
func (s *Saver) Mint(_ context.Context, res platform.Resource) (platform.Handle, error) {
	if res.Name == "" {
		return "", fmt.Errorf("%w: resource has no name", platform.ErrCapability)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating download directory: %v", platform.ErrCapability, err)
	}

	tempFile, err := os.CreateTemp(s.dir, res.Name+".tmp.*")
	if err != nil {
		return "", fmt.Errorf("%w: staging resource: %v", platform.ErrCapability, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(res.Data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("%w: writing resource: %v", platform.ErrCapability, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("%w: writing resource: %v", platform.ErrCapability, err)
	}

	return platform.Handle(tempPath), nil
}

// Save atomically renames the staged file to filename inside the saver's
// directory.
func (s *Saver) Save(_ context.Context, h platform.Handle, filename string) error {
	tempPath := string(h)
	if tempPath == "" {
		return fmt.Errorf("%w: empty handle", platform.ErrCapability)
	}

	destPath := filepath.Join(s.dir, filename)
	if err := utils.DefaultRenameRetry(tempPath, destPath); err != nil {
		return fmt.Errorf("%w: saving %s: %v", platform.ErrCapability, filename, err)
	}

	// Set appropriate file permissions (0600: rw-------)
	if err := os.Chmod(destPath, 0600); err != nil {
		// Non-fatal, just log
		fmt.Fprintf(os.Stderr, "Warning: failed to set export permissions: %v\n", err)
	}

	return nil
}

// Revoke removes the staged file. A handle whose file was already renamed
// away by Save counts as released, not as an error.
func (s *Saver) Revoke(h platform.Handle) error {
	tempPath := string(h)
	if tempPath == "" {
		return nil
	}
	err := os.Remove(tempPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing staged resource: %w", err)
	}
	return nil
}
