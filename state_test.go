package workstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStateManagerSave(t *testing.T) {
	store := NewMemoryStore()
	m := NewStateManager(store)
	ctx := context.Background()

	err := m.Save(ctx, SaveOptions{Prefix: "runs/1"}, func(dir string) error {
		writeTree(t, dir, map[string]string{
			"state.json":  `{"step":1}`,
			"blobs/a.bin": "aaa",
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Save err: %v", err)
	}

	keys, err := store.List(ctx, "runs/1")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("keys got %v", keys)
	}
	rc, _, err := store.Get(ctx, "runs/1/blobs/a.bin")
	if err != nil {
		t.Fatalf("expected uploaded object: %v", err)
	}
	rc.Close()
}

func TestStateManagerSaveFilter(t *testing.T) {
	store := NewMemoryStore()
	m := NewStateManager(store)

	err := m.Save(context.Background(), SaveOptions{Filter: IncludeExcludeFilter{Exclude: []string{"*.tmp"}}}, func(dir string) error {
		writeTree(t, dir, map[string]string{
			"state.json":  `{}`,
			"scratch.tmp": "x",
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Fatalf("store has %d objects, want 1", store.Len())
	}
}

func TestStateManagerSaveFnFailure(t *testing.T) {
	store := NewMemoryStore()
	m := NewStateManager(store)

	boom := errors.New("step failed")
	err := m.Save(context.Background(), SaveOptions{}, func(dir string) error {
		writeTree(t, dir, map[string]string{"state.json": `{}`})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the fn error", err)
	}
	if store.Len() != 0 {
		t.Fatal("nothing may be uploaded when fn fails")
	}
}

func TestStateManagerSaveRejectsParentPrefix(t *testing.T) {
	m := NewStateManager(NewMemoryStore())
	err := m.Save(context.Background(), SaveOptions{Prefix: "../escape"}, func(dir string) error { return nil })
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("err = %v, want ErrInvalidURL", err)
	}
}

func TestStateManagerRestore(t *testing.T) {
	store := NewMemoryStore()
	m := NewStateManager(store)
	ctx := context.Background()

	err := m.Save(ctx, SaveOptions{Prefix: "runs/1"}, func(dir string) error {
		writeTree(t, dir, map[string]string{
			"state.json":  `{"step":1}`,
			"blobs/a.bin": "aaa",
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	if err := m.Restore(ctx, SaveOptions{Prefix: "runs/1"}, dst); err != nil {
		t.Fatalf("Restore err: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dst, "blobs", "a.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "aaa" {
		t.Fatalf("content got %q", string(b))
	}
}
