// Package starters provides ready-made recipe definitions for seeding a
// vault. Built-ins are compiled into the binary; users can add or override
// them through .chefvault/starters.toml.
package starters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Starter is a named recipe ready to be saved into the vault.
type Starter struct {
	Name        string `toml:"name"`        // Display name (e.g., "Decode JWT")
	Body        string `toml:"body"`        // Operation chain
	Description string `toml:"description"` // Brief description
}

// Builtin contains the default starter definitions.
// These are compiled into the binary.
var Builtin = map[string]Starter{
	"to-base64": {
		Name:        "To Base64",
		Body:        "To_Base64('A-Za-z0-9+/=')",
		Description: "Encode input as Base64",
	},
	"from-base64": {
		Name:        "From Base64",
		Body:        "From_Base64('A-Za-z0-9+/=',true,false)",
		Description: "Decode Base64 input",
	},
	"from-hex": {
		Name:        "From Hex",
		Body:        "From_Hex('Auto')",
		Description: "Decode hexadecimal input",
	},
	"hexdump": {
		Name:        "Hex Dump",
		Body:        "To_Hexdump(16,false,false,false)",
		Description: "Render input as a hex dump",
	},
	"url-decode": {
		Name:        "URL Decode",
		Body:        "URL_Decode()",
		Description: "Decode percent-encoded URLs",
	},
	"jwt-decode": {
		Name:        "Decode JWT",
		Body:        "JWT_Decode()",
		Description: "Decode a JSON Web Token without verifying it",
	},
	"gunzip": {
		Name:        "Gunzip",
		Body:        "Gunzip()",
		Description: "Decompress gzip input",
	},
	"defang-url": {
		Name:        "Defang URL",
		Body:        "Defang_URL(true,true,true,'Valid domains and full URLs')",
		Description: "Make URLs safe to share in reports",
	},
	"extract-ips": {
		Name:        "Extract IPs",
		Body:        "Extract_IP_addresses(true,true,false,false,false,false)",
		Description: "Pull IPv4 and IPv6 addresses out of input",
	},
	"sha256": {
		Name:        "SHA-256",
		Body:        "SHA2('256',64,160)",
		Description: "Hash input with SHA-256",
	},
}

// userStarters holds starters loaded from the user config file.
type userStarters struct {
	Starters map[string]Starter `toml:"starters"`
}

// LoadUserStarters loads starters from .chefvault/starters.toml if it exists.
func LoadUserStarters(vaultDir string) (map[string]Starter, error) {
	path := filepath.Join(vaultDir, "starters.toml")
	data, err := os.ReadFile(path) // #nosec G304 -- path is constructed from validated vaultDir
	if os.IsNotExist(err) {
		return nil, nil // No user starters, that's fine
	}
	if err != nil {
		return nil, fmt.Errorf("read starters.toml: %w", err)
	}

	var user userStarters
	if err := toml.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parse starters.toml: %w", err)
	}

	// Set defaults for user starters
	for name, starter := range user.Starters {
		if starter.Name == "" {
			starter.Name = name
		}
		user.Starters[name] = starter
	}

	return user.Starters, nil
}

// GetAll returns merged built-in and user starters.
// User starters override built-ins with the same name.
func GetAll(vaultDir string) (map[string]Starter, error) {
	result := make(map[string]Starter)

	for name, starter := range Builtin {
		result[name] = starter
	}

	user, err := LoadUserStarters(vaultDir)
	if err != nil {
		return nil, err
	}
	for name, starter := range user {
		result[name] = starter
	}

	return result, nil
}

// Get looks up a starter by name, checking user starters first.
func Get(name string, vaultDir string) (*Starter, error) {
	// Normalize name (lowercase, strip leading/trailing hyphens)
	name = strings.ToLower(strings.Trim(name, "-"))

	all, err := GetAll(vaultDir)
	if err != nil {
		return nil, err
	}

	starter, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("unknown starter: %s", name)
	}

	return &starter, nil
}

// SaveUserStarter adds or updates a starter in .chefvault/starters.toml.
func SaveUserStarter(vaultDir, name string, starter Starter) error {
	startersPath := filepath.Join(vaultDir, "starters.toml")

	// Load existing user starters
	var user userStarters
	data, err := os.ReadFile(startersPath) // #nosec G304 -- path is constructed from validated vaultDir
	if err == nil {
		if err := toml.Unmarshal(data, &user); err != nil {
			return fmt.Errorf("parse starters.toml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read starters.toml: %w", err)
	}

	if user.Starters == nil {
		user.Starters = make(map[string]Starter)
	}

	if starter.Name == "" {
		starter.Name = name
	}
	user.Starters[name] = starter

	if err := os.MkdirAll(vaultDir, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	f, err := os.Create(startersPath) // #nosec G304 -- path is constructed from validated vaultDir
	if err != nil {
		return fmt.Errorf("create starters.toml: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(user); err != nil {
		return fmt.Errorf("encode starters.toml: %w", err)
	}

	return nil
}

// ListNames returns the sorted list of all starter names.
func ListNames(vaultDir string) ([]string, error) {
	all, err := GetAll(vaultDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// IsBuiltin returns true if the starter is a built-in (not user-defined).
func IsBuiltin(name string) bool {
	_, ok := Builtin[name]
	return ok
}
