// Package configfile reads and writes the vault's metadata.json, which
// records which storage backend holds the recipes and where exports land.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

// Supported storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Backend  string `json:"backend"`
	Database string `json:"database,omitempty"`

	// ExportDir is where export artifacts are written, relative to the
	// directory containing the vault. Empty means the current directory.
	ExportDir string `json:"export_dir,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendFile,
		Database: "vault.db",
	}
}

func ConfigPath(vaultDir string) string {
	return filepath.Join(vaultDir, ConfigFileName)
}

// Load reads metadata.json from vaultDir. Returns (nil, nil) when the file
// does not exist so callers can fall back to DefaultConfig.
func Load(vaultDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(vaultDir)) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Save(vaultDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(vaultDir), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// GetBackend returns the configured backend, defaulting to the file store.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendFile
	}
	return c.Backend
}

func (c *Config) DatabasePath(vaultDir string) string {
	db := c.Database
	if db == "" {
		db = "vault.db"
	}
	return filepath.Join(vaultDir, db)
}

// ExportPath resolves name against the configured export directory. The
// export directory is taken relative to the vault's parent so artifacts
// land next to the project, not inside the vault.
func (c *Config) ExportPath(vaultDir, name string) string {
	base := filepath.Dir(vaultDir)
	if c.ExportDir == "" {
		return filepath.Join(base, name)
	}
	if filepath.IsAbs(c.ExportDir) {
		return filepath.Join(c.ExportDir, name)
	}
	return filepath.Join(base, c.ExportDir, name)
}
