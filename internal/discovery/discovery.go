// Package discovery locates the vault directory for the current project.
//
// Resolution order is: CHEFVAULT_DIR environment variable, then a .chefvault/
// directory in the working directory or any ancestor, then the per-user vault
// under the home directory. Commands that create a vault use DefaultVaultDir,
// which never consults the home fallback.
package discovery

import (
	"os"
	"path/filepath"

	"github.com/stackchef/chefvault/internal/utils"
)

// VaultDirName is the directory that marks a project as having a vault.
const VaultDirName = ".chefvault"

// EnvVaultDir overrides discovery entirely when set to an existing directory.
const EnvVaultDir = "CHEFVAULT_DIR"

// FindVaultDir finds the .chefvault/ directory for the current context.
// Returns empty string if no vault exists anywhere on the resolution path.
func FindVaultDir() string {
	// 1. Check CHEFVAULT_DIR environment variable (preferred)
	if vaultDir := os.Getenv(EnvVaultDir); vaultDir != "" {
		absVaultDir := utils.CanonicalizePath(vaultDir)
		if info, err := os.Stat(absVaultDir); err == nil && info.IsDir() {
			return absVaultDir
		}
	}

	// 2. Search for .chefvault/ in current directory and ancestors
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for dir := cwd; dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		vaultDir := filepath.Join(dir, VaultDirName)
		if info, err := os.Stat(vaultDir); err == nil && info.IsDir() {
			return vaultDir
		}
	}

	// 3. Fall back to the per-user vault if one exists
	if homeDir := HomeVaultDir(); homeDir != "" {
		if info, err := os.Stat(homeDir); err == nil && info.IsDir() {
			return homeDir
		}
	}

	return ""
}

// DefaultVaultDir returns where a new vault should be created: CHEFVAULT_DIR
// if set, otherwise .chefvault/ under the current directory. The directory
// does not have to exist yet.
func DefaultVaultDir() (string, error) {
	if vaultDir := os.Getenv(EnvVaultDir); vaultDir != "" {
		return utils.CanonicalizePath(vaultDir), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, VaultDirName), nil
}

// HomeVaultDir returns the per-user vault path (~/.chefvault), or empty
// string when the home directory cannot be determined.
func HomeVaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, VaultDirName)
}

// ProjectRoot returns the directory containing the vault. Export artifacts
// default to landing here rather than inside the vault itself.
func ProjectRoot(vaultDir string) string {
	if vaultDir == "" {
		return ""
	}
	return filepath.Dir(vaultDir)
}
