package badgerstore

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sagikazarmark/workstate"
)

func openTestStore(t *testing.T) workstate.Store {
	t.Helper()
	u, err := workstate.ParseURL("badger://checkpoints/state.bin")
	if err != nil {
		t.Fatal(err)
	}
	s, err := Open(context.Background(), u, workstate.Options{"path": filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "state/step1.bin", strings.NewReader("payload")); err != nil {
		t.Fatalf("Put err: %v", err)
	}
	rc, size, err := s.Get(ctx, "state/step1.bin")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	defer rc.Close()
	if size != int64(len("payload")) {
		t.Errorf("size got %d", size)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "payload" {
		t.Fatalf("content got %q", string(b))
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.Get(context.Background(), "missing.bin")
	if !errors.Is(err, workstate.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a.bin", strings.NewReader("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "a.bin", strings.NewReader("two")); err != nil {
		t.Fatal(err)
	}
	rc, _, err := s.Get(ctx, "a.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "two" {
		t.Fatalf("content got %q, want last write", string(b))
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"runs/1/a", "runs/1/b", "runs/10/c"} {
		if err := s.Put(ctx, key, strings.NewReader("x")); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.List(ctx, "runs/1")
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(keys)
	want := []string{"runs/1/a", "runs/1/b"}
	if len(keys) != len(want) {
		t.Fatalf("keys got %v want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys got %v want %v", keys, want)
		}
	}
}
