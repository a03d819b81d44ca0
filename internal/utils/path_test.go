package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		validate func(t *testing.T, result string)
	}{
		{
			name:  "absolute path",
			input: "/tmp/test",
			validate: func(t *testing.T, result string) {
				if !filepath.IsAbs(result) {
					t.Errorf("expected absolute path, got %q", result)
				}
			},
		},
		{
			name:  "relative path",
			input: ".",
			validate: func(t *testing.T, result string) {
				if !filepath.IsAbs(result) {
					t.Errorf("expected absolute path, got %q", result)
				}
			},
		},
		{
			name:  "current directory",
			input: ".",
			validate: func(t *testing.T, result string) {
				cwd, err := os.Getwd()
				if err != nil {
					t.Fatalf("failed to get cwd: %v", err)
				}
				if !filepath.IsAbs(result) {
					t.Errorf("expected absolute path, got %q", result)
				}
				if result != cwd {
					// cwd itself may contain symlinks; compare canonical forms
					canonicalCwd, err := filepath.EvalSymlinks(cwd)
					if err == nil && result != canonicalCwd {
						t.Errorf("expected %q or %q, got %q", cwd, canonicalCwd, result)
					}
				}
			},
		},
		{
			name:  "empty path",
			input: "",
			validate: func(t *testing.T, result string) {
				if result == "" {
					t.Error("expected non-empty result for empty input")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanonicalizePath(tt.input)
			tt.validate(t, result)
		})
	}
}

func TestCanonicalizePathResolvesSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on Windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got := CanonicalizePath(link)
	want := CanonicalizePath(target)
	if got != want {
		t.Errorf("CanonicalizePath(%q) = %q, want %q", link, got, want)
	}
}

func TestResolveForWrite(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file returns path unchanged", func(t *testing.T) {
		path := filepath.Join(dir, "new.json")
		got, err := ResolveForWrite(path)
		if err != nil {
			t.Fatalf("ResolveForWrite: %v", err)
		}
		if got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})

	t.Run("regular file returns path unchanged", func(t *testing.T) {
		path := filepath.Join(dir, "plain.json")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := ResolveForWrite(path)
		if err != nil {
			t.Fatalf("ResolveForWrite: %v", err)
		}
		if got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})

	t.Run("symlink resolves to target", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlink creation requires elevated privileges on Windows")
		}
		target := filepath.Join(dir, "target.json")
		if err := os.WriteFile(target, []byte("{}"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		link := filepath.Join(dir, "link.json")
		if err := os.Symlink(target, link); err != nil {
			t.Fatalf("symlink: %v", err)
		}
		got, err := ResolveForWrite(link)
		if err != nil {
			t.Fatalf("ResolveForWrite: %v", err)
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			t.Fatalf("eval target: %v", err)
		}
		if got != resolved {
			t.Errorf("got %q, want %q", got, resolved)
		}
	})
}

func TestRenameWithRetry(t *testing.T) {
	dir := t.TempDir()

	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("payload"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "dst.txt")

	if err := DefaultRenameRetry(src, dst); err != nil {
		t.Fatalf("DefaultRenameRetry: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after rename")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("dst content = %q, want %q", data, "payload")
	}
}

func TestRenameWithRetryMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := RenameWithRetry(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"), 0, 0)
	if err == nil {
		t.Fatal("expected error renaming missing source")
	}
}
