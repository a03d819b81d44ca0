// Package testvault provides vault-backed test helpers for command and
// facade tests.
//
// All helper methods operate through the vault.Store API so tests stay
// independent of the storage backend; the store itself is memory-backed
// and isolated per test.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    env := testvault.NewEnv(t)
//	    r := env.AddRecipe("To Base64")
//	    env.AssertStored(r.ID)
//	}
package testvault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stackchef/chefvault/internal/configfile"
	"github.com/stackchef/chefvault/internal/discovery"
	"github.com/stackchef/chefvault/internal/platform"
	"github.com/stackchef/chefvault/internal/storage/memory"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/vault"
)

// defaultBody is a small but realistic recipe body for tests that don't
// care about the content.
const defaultBody = `[{"op":"To Base64","args":["A-Za-z0-9+/="]}]`

// New creates an isolated memory-backed vault.Store for a single test or
// benchmark. The store is closed automatically when the test completes.
func New(t testing.TB) *vault.Store {
	t.Helper()
	store := vault.New(memory.New(), "")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// Env provides a test environment with common setup and helpers.
type Env struct {
	t     *testing.T
	Store *vault.Store
	Ctx   context.Context
}

// NewEnv creates a new test environment backed by an isolated in-memory
// store. The store is automatically cleaned up when the test completes.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return &Env{
		t:     t,
		Store: New(t),
		Ctx:   context.Background(),
	}
}

// ---------------------------------------------------------------------------
// Recipe creation helpers
// ---------------------------------------------------------------------------

// AddRecipe saves a recipe with the given name and a stock body. Returns
// the saved recipe with its allocated id populated.
func (e *Env) AddRecipe(name string) types.Recipe {
	e.t.Helper()
	return e.AddRecipeWith(name, defaultBody)
}

// AddRecipeWith saves a recipe with the given name and body.
func (e *Env) AddRecipeWith(name, body string) types.Recipe {
	e.t.Helper()
	r, err := e.Store.SaveRecipe(e.Ctx, name, body)
	if err != nil {
		e.t.Fatalf("SaveRecipe(%q) failed: %v", name, err)
	}
	return *r
}

// Seed saves n recipes with generated names and returns them in save order.
func (e *Env) Seed(n int) []types.Recipe {
	e.t.Helper()
	recipes := make([]types.Recipe, 0, n)
	for i := 1; i <= n; i++ {
		recipes = append(recipes, e.AddRecipe(fmt.Sprintf("Recipe %d", i)))
	}
	return recipes
}

// ---------------------------------------------------------------------------
// Assertion helpers
// ---------------------------------------------------------------------------

// Recipes returns the full stored collection.
func (e *Env) Recipes() []types.Recipe {
	e.t.Helper()
	recipes, err := e.Store.LoadAll(e.Ctx)
	if err != nil {
		e.t.Fatalf("LoadAll failed: %v", err)
	}
	return recipes
}

// AssertCount asserts the number of stored recipes.
func (e *Env) AssertCount(want int) {
	e.t.Helper()
	got, err := e.Store.Count(e.Ctx)
	if err != nil {
		e.t.Fatalf("Count failed: %v", err)
	}
	if got != want {
		e.t.Errorf("stored recipe count = %d, want %d", got, want)
	}
}

// AssertStored asserts that a recipe with the given id exists.
func (e *Env) AssertStored(id int64) {
	e.t.Helper()
	if _, err := e.Store.Get(e.Ctx, id); err != nil {
		e.t.Errorf("expected recipe %d to be stored: %v", id, err)
	}
}

// AssertGone asserts that no recipe with the given id exists.
func (e *Env) AssertGone(id int64) {
	e.t.Helper()
	if _, err := e.Store.Get(e.Ctx, id); err == nil {
		e.t.Errorf("expected recipe %d to be gone, but it exists", id)
	}
}

// ---------------------------------------------------------------------------
// On-disk vault scaffolding
// ---------------------------------------------------------------------------

// InitDir scaffolds a real vault directory under a temp dir, writes default
// metadata, and points CHEFVAULT_DIR at it so discovery resolves there.
// Returns the vault directory path.
func InitDir(t *testing.T) string {
	t.Helper()
	vaultDir := filepath.Join(t.TempDir(), discovery.VaultDirName)
	if err := os.MkdirAll(vaultDir, 0o750); err != nil {
		t.Fatalf("creating vault dir: %v", err)
	}
	if err := configfile.DefaultConfig().Save(vaultDir); err != nil {
		t.Fatalf("writing vault metadata: %v", err)
	}
	t.Setenv(discovery.EnvVaultDir, vaultDir)
	return vaultDir
}

// ---------------------------------------------------------------------------
// Capability fakes
// ---------------------------------------------------------------------------

// CaptureSaver is a platform.FileSaver that records every mint, save, and
// revoke without touching the filesystem. It is strict about handle
// lifecycle so tests catch double-revokes and saves of released handles.
type CaptureSaver struct {
	Minted  []platform.Resource
	Saved   map[string][]byte
	Revoked []platform.Handle

	pending map[platform.Handle]platform.Resource
	next    int
}

// NewCaptureSaver returns an empty CaptureSaver.
func NewCaptureSaver() *CaptureSaver {
	return &CaptureSaver{
		Saved:   make(map[string][]byte),
		pending: make(map[platform.Handle]platform.Resource),
	}
}

func (s *CaptureSaver) Mint(_ context.Context, res platform.Resource) (platform.Handle, error) {
	s.next++
	h := platform.Handle(fmt.Sprintf("capture-%d", s.next))
	s.Minted = append(s.Minted, res)
	s.pending[h] = res
	return h, nil
}

func (s *CaptureSaver) Save(_ context.Context, h platform.Handle, filename string) error {
	res, ok := s.pending[h]
	if !ok {
		return fmt.Errorf("%w: save of unknown handle %q", platform.ErrCapability, h)
	}
	s.Saved[filename] = append([]byte(nil), res.Data...)
	return nil
}

func (s *CaptureSaver) Revoke(h platform.Handle) error {
	if _, ok := s.pending[h]; !ok {
		return fmt.Errorf("%w: revoke of unknown handle %q", platform.ErrCapability, h)
	}
	delete(s.pending, h)
	s.Revoked = append(s.Revoked, h)
	return nil
}

// Outstanding returns how many minted handles have not been revoked.
func (s *CaptureSaver) Outstanding() int {
	return len(s.pending)
}

// CaptureNotifier is a platform.Notifier that records delivered messages.
type CaptureNotifier struct {
	Messages []string
}

func (n *CaptureNotifier) Notify(_ context.Context, message string) error {
	n.Messages = append(n.Messages, message)
	return nil
}
