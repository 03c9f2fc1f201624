package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/pixil98/go-testutil"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "saves")

	store, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "path", store.path, dir)

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	testutil.AssertEqual(t, "is dir", info.IsDir(), true)
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := store.Get(ctx, "manor:save:v1"); !errors.Is(err, save.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "manor:save:v1", []byte(`{"v":1,"data":{}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "manor:save:v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	testutil.AssertEqual(t, "value", string(got), `{"v":1,"data":{}}`)

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	testutil.AssertEqual(t, "key count", len(keys), 1)
	testutil.AssertEqual(t, "key", keys[0], "manor:save:v1")

	if err := store.Delete(ctx, "manor:save:v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "manor:save:v1"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestStore_KeyWithSlash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.Set(ctx, "../escape", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.json")); err == nil {
		t.Error("key escaped the save directory")
	}
	got, err := store.Get(ctx, "../escape")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	testutil.AssertEqual(t, "value", string(got), "x")
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if err := atomicWrite(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("atomicWrite: %v", err)
	}
	if err := atomicWrite(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("atomicWrite: %v", err)
	}

	data, _ := os.ReadFile(path)
	testutil.AssertEqual(t, "content", string(data), "second")

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be gone")
	}
}

func TestAtomicWrite_MissingDirectory(t *testing.T) {
	err := atomicWrite(filepath.Join(t.TempDir(), "missing", "out.json"), []byte("x"), 0o644)
	testutil.AssertErrorContains(t, err, "writing temp file")
}
