package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocalConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		wantChannel string
		wantDir     string
		wantNoColor bool
	}{
		{
			name:        "empty config",
			configYAML:  "",
			wantChannel: "",
		},
		{
			name:        "notify channel set",
			configYAML:  "notify.channel: log\n",
			wantChannel: "log",
		},
		{
			name:        "commented keys do not match",
			configYAML:  "# notify.channel: log\nexport.dir: out\n",
			wantChannel: "",
			wantDir:     "out",
		},
		{
			name:        "quoted values",
			configYAML:  `export.dir: "my exports"` + "\n",
			wantDir:     "my exports",
		},
		{
			name:        "mixed config",
			configYAML:  "no-color: true\nnotify.channel: none\nexport.dir: /tmp/drop\n",
			wantChannel: "none",
			wantDir:     "/tmp/drop",
			wantNoColor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vaultDir := t.TempDir()
			if tt.configYAML != "" {
				path := filepath.Join(vaultDir, "config.yaml")
				if err := os.WriteFile(path, []byte(tt.configYAML), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}
			}

			cfg := LoadLocalConfig(vaultDir)
			if cfg == nil {
				t.Fatal("LoadLocalConfig returned nil")
			}
			if cfg.NotifyChannel != tt.wantChannel {
				t.Errorf("NotifyChannel = %q, want %q", cfg.NotifyChannel, tt.wantChannel)
			}
			if cfg.ExportDir != tt.wantDir {
				t.Errorf("ExportDir = %q, want %q", cfg.ExportDir, tt.wantDir)
			}
			if cfg.NoColor != tt.wantNoColor {
				t.Errorf("NoColor = %v, want %v", cfg.NoColor, tt.wantNoColor)
			}
		})
	}
}

func TestLoadLocalConfigMissingDir(t *testing.T) {
	cfg := LoadLocalConfig(filepath.Join(t.TempDir(), "nope"))
	if cfg == nil {
		t.Fatal("LoadLocalConfig should return empty config, not nil")
	}
	if cfg.NotifyChannel != "" || cfg.ExportDir != "" {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadLocalConfigInvalidYAML(t *testing.T) {
	vaultDir := t.TempDir()
	path := filepath.Join(vaultDir, "config.yaml")
	if err := os.WriteFile(path, []byte("notify.channel: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadLocalConfig(vaultDir)
	if cfg == nil {
		t.Fatal("LoadLocalConfig should return empty config, not nil")
	}
	if cfg.NotifyChannel != "" {
		t.Errorf("expected zero-value config for invalid yaml, got %+v", cfg)
	}
}

func TestLoadLocalConfigWithEnv(t *testing.T) {
	vaultDir := t.TempDir()
	path := filepath.Join(vaultDir, "config.yaml")
	if err := os.WriteFile(path, []byte("notify.channel: terminal\nexport.dir: from-file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CHEFVAULT_NOTIFY_CHANNEL", "log")
	t.Setenv("CHEFVAULT_EXPORT_DIR", "from-env")

	cfg := LoadLocalConfigWithEnv(vaultDir)
	if cfg.NotifyChannel != "log" {
		t.Errorf("NotifyChannel = %q, want env override \"log\"", cfg.NotifyChannel)
	}
	if cfg.ExportDir != "from-env" {
		t.Errorf("ExportDir = %q, want env override \"from-env\"", cfg.ExportDir)
	}
}
