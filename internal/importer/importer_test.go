package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stackchef/chefvault/internal/payload"
	"github.com/stackchef/chefvault/internal/storage/memory"
	"github.com/stackchef/chefvault/internal/types"
	"github.com/stackchef/chefvault/internal/vault"
)

func newTestStore(t *testing.T) (*vault.Store, *memory.Store) {
	t.Helper()
	kv := memory.New()
	store := vault.New(kv, "")
	t.Cleanup(func() { _ = store.Close() })
	return store, kv
}

func seed(t *testing.T, store *vault.Store, recipes []types.Recipe) {
	t.Helper()
	if err := store.ReplaceAll(context.Background(), recipes); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
}

func TestMergeIntoEmptyStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	data := []byte(`[{"id":1,"name":"Test Recipe","recipe":"To Base64"}]`)
	result, err := Import(ctx, store, data, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.Mode != ModeMerge {
		t.Errorf("Mode = %q, want merge", result.Mode)
	}
	if result.Imported != 1 || result.Total != 1 || result.Collisions != 0 {
		t.Errorf("result = %+v", result)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(recipes) != 1 || recipes[0].ID != 1 || recipes[0].Name != "Test Recipe" {
		t.Errorf("store = %+v", recipes)
	}
}

func TestMergeRemapsCollisions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{{ID: 1, Name: "Existing", Body: "URL Decode"}})

	data := []byte(`[{"id":1,"name":"Incoming","recipe":"To Base64"}]`)
	result, err := Import(ctx, store, data, Options{Mode: ModeMerge})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.Collisions != 1 {
		t.Errorf("Collisions = %d, want 1", result.Collisions)
	}
	if got := result.IDMapping[1]; got != 2 {
		t.Errorf("IDMapping[1] = %d, want 2", got)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("store holds %d recipes, want 2", len(recipes))
	}
	// The existing recipe is intact, never overwritten.
	if recipes[0].ID != 1 || recipes[0].Name != "Existing" || recipes[0].Body != "URL Decode" {
		t.Errorf("existing recipe modified: %+v", recipes[0])
	}
	if recipes[1].ID != 2 || recipes[1].Name != "Incoming" {
		t.Errorf("incoming recipe = %+v", recipes[1])
	}
}

func TestMergeCascadingCollisions(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{{ID: 1, Name: "Existing", Body: "x"}})

	// Incoming id 1 remaps to 2, which then pushes incoming id 2 to 3.
	data := []byte(`[
		{"id":1,"name":"A","recipe":"To Base64"},
		{"id":2,"name":"B","recipe":"From Hex"}
	]`)
	result, err := Import(ctx, store, data, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if result.Collisions != 2 {
		t.Errorf("Collisions = %d, want 2", result.Collisions)
	}
	if result.IDMapping[1] != 2 || result.IDMapping[2] != 3 {
		t.Errorf("IDMapping = %v", result.IDMapping)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	var ids []int64
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v, want [1 2 3]", ids)
	}
}

func TestMergeWithoutCollisionKeepsIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{{ID: 1, Name: "Existing", Body: "x"}})

	data := []byte(`[{"id":7,"name":"Seven","recipe":"To Base64"}]`)
	result, err := Import(ctx, store, data, Options{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Collisions != 0 || len(result.IDMapping) != 0 {
		t.Errorf("result = %+v", result)
	}

	recipes, _ := store.LoadAll(ctx)
	if len(recipes) != 2 || recipes[1].ID != 7 {
		t.Errorf("store = %+v", recipes)
	}
}

func TestReplaceMode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{
		{ID: 1, Name: "Old A", Body: "x"},
		{ID: 2, Name: "Old B", Body: "y"},
	})

	data := []byte(`[{"id":5,"name":"New","recipe":"To Base64"}]`)
	result, err := Import(ctx, store, data, Options{Mode: ModeReplace})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Mode != ModeReplace || result.Total != 1 {
		t.Errorf("result = %+v", result)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(recipes) != 1 || recipes[0].ID != 5 || recipes[0].Name != "New" {
		t.Errorf("store = %+v", recipes)
	}
}

func TestReplaceRecoversCorruptStore(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, payload.StorageKey, "corrupt garbage"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data := []byte(`[{"id":1,"name":"Recovered","recipe":"To Base64"}]`)
	if _, err := Import(ctx, store, data, Options{Mode: ModeReplace}); err != nil {
		t.Fatalf("Import(replace) on corrupt store error = %v", err)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() after recovery error = %v", err)
	}
	if len(recipes) != 1 || recipes[0].Name != "Recovered" {
		t.Errorf("store = %+v", recipes)
	}
}

func TestMergeSurfacesCorruptStore(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, payload.StorageKey, "corrupt garbage"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data := []byte(`[{"id":1,"name":"A","recipe":"x"}]`)
	_, err := Import(ctx, store, data, Options{Mode: ModeMerge})
	if !errors.Is(err, vault.ErrCorruptStore) {
		t.Errorf("Import(merge) error = %v, want ErrCorruptStore", err)
	}
}

func TestMalformedPayloadLeavesStoreUntouched(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{{ID: 1, Name: "Keep", Body: "x"}})
	before, err := kv.Get(ctx, payload.StorageKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	malformed := [][]byte{
		[]byte(`{"id":1}`),
		[]byte(`[{"id":1}]`),
		[]byte(`not json`),
		[]byte(``),
		[]byte(`[{"id":1,"name":"A","recipe":"x"},{"id":1,"name":"B","recipe":"y"}]`),
	}
	for _, data := range malformed {
		if _, err := Import(ctx, store, data, Options{}); !errors.Is(err, payload.ErrMalformedPayload) {
			t.Errorf("Import(%q) error = %v, want ErrMalformedPayload", data, err)
		}
	}

	after, err := kv.Get(ctx, payload.StorageKey)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if before != after {
		t.Error("store document changed after rejected imports")
	}
}

func TestDryRun(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seed(t, store, []types.Recipe{{ID: 1, Name: "Existing", Body: "x"}})

	data := []byte(`[{"id":1,"name":"Incoming","recipe":"To Base64"}]`)
	result, err := Import(ctx, store, data, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if !result.DryRun || result.Collisions != 1 || result.Total != 2 {
		t.Errorf("result = %+v", result)
	}

	recipes, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Errorf("dry run modified the store: %+v", recipes)
	}
}

func TestUnknownMode(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := Import(context.Background(), store, []byte(`[]`), Options{Mode: "upsert"})
	if err == nil {
		t.Fatal("Import() with unknown mode should fail")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	original := []types.Recipe{
		{ID: 1, Name: "Test Recipe", Body: "To Base64"},
		{ID: 2, Name: "Another", Body: "From Hex"},
	}
	seed(t, store, original)

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	data, err := payload.Encode(loaded)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	fresh, _ := newTestStore(t)
	if _, err := Import(ctx, fresh, data, Options{Mode: ModeReplace}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	restored, err := fresh.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !types.CollectionsEqual(restored, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", restored, original)
	}
}
