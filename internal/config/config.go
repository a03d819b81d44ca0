// Package config manages chefvault configuration through a viper singleton.
//
// Precedence, highest first: explicit Set calls (CLI flags), environment
// variables (CV_* short forms and CHEFVAULT_* long forms), the project's
// .chefvault/config.yaml, built-in defaults. Initialize builds a fresh viper
// instance so re-initialization picks up environment and file changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stackchef/chefvault/internal/discovery"
)

// v is the package-level viper instance. Nil until Initialize is called;
// the getters treat nil as "defaults only, nothing set".
var v *viper.Viper

// Defaults for every known key. Registered on each Initialize so GetXXX
// calls return sensible values even without a config file.
func setDefaults(nv *viper.Viper) {
	nv.SetDefault("json", false)
	nv.SetDefault("quiet", false)
	nv.SetDefault("verbose", false)
	nv.SetDefault("no-color", false)
	nv.SetDefault("lock-timeout", 10*time.Second)
	nv.SetDefault("notify.channel", "terminal")
	nv.SetDefault("export.dir", "")
	nv.SetDefault("export.manifest", false)
	nv.SetDefault("watch.debounce", 500*time.Millisecond)
}

// bindEnvVars wires environment overrides. Each key answers to a short CV_
// form and a long CHEFVAULT_ form; the short form wins when both are set.
func bindEnvVars(nv *viper.Viper) {
	for _, key := range knownKeys() {
		suffix := envSuffix(key)
		_ = nv.BindEnv(key, "CV_"+suffix, "CHEFVAULT_"+suffix)
	}
}

// knownKeys lists every key the config layer understands. `cv config set`
// rejects anything else to catch typos early.
func knownKeys() []string {
	return []string{
		"json",
		"quiet",
		"verbose",
		"no-color",
		"lock-timeout",
		"notify.channel",
		"notify.log-path",
		"export.dir",
		"export.manifest",
		"watch.debounce",
	}
}

// KnownKeys returns the config keys `cv config set` accepts, in display order.
func KnownKeys() []string {
	return knownKeys()
}

// envSuffix converts a config key to its environment variable suffix:
// "notify.channel" becomes "NOTIFY_CHANNEL".
func envSuffix(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Initialize builds the viper singleton: defaults, environment bindings, and
// the project config file if one exists. Safe to call repeatedly; each call
// rebuilds from scratch.
func Initialize() error {
	nv := viper.New()
	setDefaults(nv)
	bindEnvVars(nv)

	if configPath := findConfigFile(); configPath != "" {
		nv.SetConfigFile(configPath)
		if err := nv.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", configPath, err)
		}
	}

	v = nv
	return nil
}

// findConfigFile locates config.yaml inside the discovered vault directory.
// Returns empty string when there is no vault or no config file yet.
func findConfigFile() string {
	vaultDir := discovery.FindVaultDir()
	if vaultDir == "" {
		return ""
	}
	configPath := filepath.Join(vaultDir, "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		return ""
	}
	return configPath
}

// ResetForTesting discards the singleton so the next getter sees an
// uninitialized state. Test helper only.
func ResetForTesting() {
	v = nil
}

// GetString returns the string value for key, or "" before Initialize.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool returns the bool value for key, or false before Initialize.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt returns the int value for key, or 0 before Initialize.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration returns the duration value for key, or 0 before Initialize.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice returns the string slice value for key.
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// Set overrides a value for the lifetime of the process. Used to push
// resolved CLI flags into the config layer; never persisted.
func Set(key string, value interface{}) {
	if v == nil {
		v = viper.New()
		setDefaults(v)
		bindEnvVars(v)
	}
	v.Set(key, value)
}

// AllSettings returns the merged view of every setting.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
