package workstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPersistDirLoadDirRoundTrip(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"state.json":    `{"step":1}`,
		"blobs/a.bin":   "aaa",
		"blobs/b.bin":   "bbb",
		"scratch.tmp":   "ignore me",
		"sub/deep/c.md": "ccc",
	})

	filter := IncludeExcludeFilter{Exclude: []string{"*.tmp"}}
	persister := NewDirPersister(f)
	if err := persister.PersistDir(ctx, "memory://bucket/runs/1", src, filter); err != nil {
		t.Fatalf("PersistDir err: %v", err)
	}

	dst := t.TempDir()
	loader := NewDirLoader(f)
	if err := loader.LoadDir(ctx, "memory://bucket/runs/1", dst, nil); err != nil {
		t.Fatalf("LoadDir err: %v", err)
	}

	for rel, want := range map[string]string{
		"state.json":    `{"step":1}`,
		"blobs/a.bin":   "aaa",
		"blobs/b.bin":   "bbb",
		"sub/deep/c.md": "ccc",
	} {
		b, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(b) != want {
			t.Errorf("%s content got %q want %q", rel, string(b), want)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "scratch.tmp")); !os.IsNotExist(err) {
		t.Fatal("excluded file must not be uploaded")
	}
}

func TestLoadDirFilter(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"keep.bin": "keep",
		"drop.txt": "drop",
	})
	if err := NewDirPersister(f).PersistDir(ctx, "memory://bucket/runs/2", src, nil); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	filter := IncludeExcludeFilter{Include: []string{"*.bin"}}
	if err := NewDirLoader(f).LoadDir(ctx, "memory://bucket/runs/2", dst, filter); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dst, "keep.bin")); err != nil {
		t.Fatalf("expected keep.bin: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "drop.txt")); !os.IsNotExist(err) {
		t.Fatal("drop.txt should have been filtered out")
	}
}
