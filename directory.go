package workstate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader downloads object trees into local directories.
type DirLoader struct {
	binding
}

// NewDirLoader returns a directory loader resolving references through
// factory.
func NewDirLoader(factory *Factory, opts ...BindOption) *DirLoader {
	l := &DirLoader{binding: binding{factory: factory}}
	for _, opt := range opts {
		opt(&l.binding)
	}
	return l
}

// LoadDir fetches every object under the prefix ref points at and writes it
// beneath dst, recreating the key hierarchy. A nil filter loads everything.
func (l *DirLoader) LoadDir(ctx context.Context, ref string, dst string, filter Filter) error {
	store, prefix, err := l.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return loadPrefix(ctx, store, prefix, dst, filter)
}

// loadPrefix downloads every object under prefix into dst, recreating the
// key hierarchy relative to the prefix.
func loadPrefix(ctx context.Context, store Store, prefix, dst string, filter Filter) error {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}

	for _, key := range keys {
		rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
		if rel == "" {
			rel = filepath.Base(key)
		}
		if filter != nil && !filter.Match(rel) {
			continue
		}

		rc, _, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if err := writeLocal(target, rc); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}
	return nil
}

func writeLocal(target string, rc io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// DirPersister uploads local directory trees under an object prefix.
type DirPersister struct {
	binding
}

// NewDirPersister returns a directory persister resolving references through
// factory.
func NewDirPersister(factory *Factory, opts ...BindOption) *DirPersister {
	p := &DirPersister{binding: binding{factory: factory}}
	for _, opt := range opts {
		opt(&p.binding)
	}
	return p
}

// PersistDir uploads every regular file under src to the prefix ref points
// at, preserving the directory hierarchy in the keys. A nil filter uploads
// everything.
func (p *DirPersister) PersistDir(ctx context.Context, ref string, src string, filter Filter) error {
	store, prefix, err := p.resolve(ctx, ref)
	if err != nil {
		return err
	}

	return walkFiles(src, filter, func(path, rel string) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		defer f.Close()

		key := rel
		if prefix != "" {
			key = prefix + "/" + rel
		}
		return store.Put(ctx, key, f)
	})
}

// walkFiles visits every regular file under root that passes filter, handing
// fn the absolute path and the slash-separated relative path.
func walkFiles(root string, filter Filter, fn func(path, rel string) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if filter != nil && !filter.Match(rel) {
			return nil
		}
		return fn(path, rel)
	})
	if err != nil && !isWrappedKind(err) {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return err
}

func isWrappedKind(err error) bool {
	for _, kind := range []error{ErrInvalidURL, ErrStoreConnection, ErrNotFound, ErrIO} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
