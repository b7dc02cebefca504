package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "seq:0xaa", "42"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "seq:0xaa")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || val != "42" {
		t.Fatalf("unexpected value: %v (ok=%v)", val, ok)
	}
	if err := store.Delete(ctx, "seq:0xaa"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, ok, err = store.Get(ctx, "seq:0xaa")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStoreUpsert(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Set(ctx, "seq:0xbb", "1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "seq:0xbb", "2"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "seq:0xbb")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok || val != "2" {
		t.Fatalf("expected upserted value 2, got %q (ok=%v)", val, ok)
	}
}
