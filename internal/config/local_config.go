package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml read directly from the file
// rather than through the viper singleton. Direct reads matter when the
// working directory has changed since Initialize, or when inspecting a
// vault other than the one viper was initialized against (cv doctor).
//
// Keys are stored flat ("notify.channel: log") so the file stays greppable
// and comment-friendly; viper resolves the same spelling.
type LocalConfig struct {
	NotifyChannel string `yaml:"notify.channel"`
	NotifyLogPath string `yaml:"notify.log-path"`
	ExportDir     string `yaml:"export.dir"`
	LockTimeout   string `yaml:"lock-timeout"`
	NoColor       bool   `yaml:"no-color"`
}

// LoadLocalConfig reads and parses config.yaml directly from the given vault
// directory, bypassing the viper singleton.
//
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't
// be parsed.
func LoadLocalConfig(vaultDir string) *LocalConfig {
	configPath := filepath.Join(vaultDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path comes from vaultDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// LoadLocalConfigWithEnv reads config.yaml and applies environment variable
// overrides. Environment variables take precedence over config file values.
func LoadLocalConfigWithEnv(vaultDir string) *LocalConfig {
	cfg := LoadLocalConfig(vaultDir)

	if envChannel := os.Getenv("CHEFVAULT_NOTIFY_CHANNEL"); envChannel != "" {
		cfg.NotifyChannel = envChannel
	}
	if envDir := os.Getenv("CHEFVAULT_EXPORT_DIR"); envDir != "" {
		cfg.ExportDir = envDir
	}

	return cfg
}
