package filekv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackchef/chefvault/internal/storage"
)

func TestGetMissingFile(t *testing.T) {
	store := Open(t.TempDir())
	ctx := context.Background()

	_, err := store.Get(ctx, "savedRecipes")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get on missing file = %v, want ErrKeyNotFound", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store := Open(t.TempDir())
	ctx := context.Background()

	payload := `[{"id":1,"name":"Test Recipe","recipe":"To Base64"}]`
	if err := store.Set(ctx, "savedRecipes", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "savedRecipes")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != payload {
		t.Errorf("Get = %q, want %q", got, payload)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := Open(t.TempDir())
	ctx := context.Background()

	if err := store.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "second" {
		t.Errorf("Get = %q, want %q", got, "second")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := Open(t.TempDir())
	ctx := context.Background()

	if err := store.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", key, err)
		}
		if got != want {
			t.Errorf("Get(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestDelete(t *testing.T) {
	store := Open(t.TempDir())
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := store.Get(ctx, "k")
	if !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get after delete = %v, want ErrKeyNotFound", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key = %v, want nil", err)
	}
}

func TestCorruptDocumentSurfaced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, StoreFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write corrupt store: %v", err)
	}

	store := Open(dir)
	_, err := store.Get(context.Background(), "savedRecipes")
	if err == nil {
		t.Fatal("expected error for corrupt store document")
	}
	if !strings.Contains(err.Error(), "parsing store") {
		t.Errorf("error = %q, want parsing failure", err.Error())
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Set(ctx, "savedRecipes", "[]"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}
