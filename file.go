package workstate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Destination selects where loaded bytes go. Construct with ToBuffer, ToPath,
// or ToWriter.
type Destination interface {
	isDestination()
}

type bufferDestination struct{}
type pathDestination struct{ path string }
type writerDestination struct{ w io.Writer }

func (bufferDestination) isDestination() {}
func (pathDestination) isDestination()   {}
func (writerDestination) isDestination() {}

// ToBuffer returns the loaded bytes in LoadResult.Bytes.
func ToBuffer() Destination { return bufferDestination{} }

// ToPath writes the loaded bytes to path, creating parent directories as
// needed. On failure no partial file is left behind.
func ToPath(path string) Destination { return pathDestination{path: path} }

// ToWriter streams the loaded bytes into w.
func ToWriter(w io.Writer) Destination { return writerDestination{w: w} }

// LoadResult describes a completed load. Bytes is set for buffer
// destinations, Path for path destinations; Size always holds the object
// size in bytes.
type LoadResult struct {
	Bytes []byte
	Path  string
	Size  int64
}

// Source supplies the bytes for a persist. Construct with FromBytes,
// FromReader, or FromPath.
type Source interface {
	isSource()
}

type bytesSource struct{ data []byte }
type readerSource struct{ r io.Reader }
type pathSource struct{ path string }

func (bytesSource) isSource()  {}
func (readerSource) isSource() {}
func (pathSource) isSource()   {}

// FromBytes persists the given byte slice.
func FromBytes(data []byte) Source { return bytesSource{data: data} }

// FromReader persists everything readable from r.
func FromReader(r io.Reader) Source { return readerSource{r: r} }

// FromPath persists the content of the local file at path.
func FromPath(path string) Source { return pathSource{path: path} }

// PersistResult describes a completed persist.
type PersistResult struct {
	Key  string
	Size int64
}

// binding resolves references against a factory, or against a pre-bound
// store for bare-key references.
type binding struct {
	factory *Factory
	store   Store
	opts    Options
}

// BindOption configures a Loader or Persister.
type BindOption func(*binding)

// WithStore pre-binds a store handle, allowing bare-key references and
// overriding store resolution for URL references.
func WithStore(s Store) BindOption {
	return func(b *binding) { b.store = s }
}

// WithClientOptions sets client options passed to the factory on every
// resolution.
func WithClientOptions(opts Options) BindOption {
	return func(b *binding) { b.opts = opts }
}

// resolve maps a reference to a store handle and object key. URL references
// resolve through the factory unless a store is bound, in which case only the
// path is taken from the URL. Bare keys require a bound store.
func (b *binding) resolve(ctx context.Context, ref string) (Store, string, error) {
	if !strings.Contains(ref, "://") {
		if b.store == nil {
			return nil, "", fmt.Errorf("%w: bare key %q requires a bound store", ErrInvalidURL, ref)
		}
		if err := validateKey(ref); err != nil {
			return nil, "", err
		}
		return b.store, ref, nil
	}

	if b.store != nil {
		u, err := ParseURL(ref)
		if err != nil {
			return nil, "", err
		}
		return b.store, u.Path, nil
	}

	if b.factory == nil {
		return nil, "", fmt.Errorf("%w: no factory configured for %q", ErrInvalidURL, ref)
	}
	u, err := b.factory.Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	s, err := b.factory.Open(ctx, u, b.opts)
	if err != nil {
		return nil, "", err
	}
	return s, u.Path, nil
}

// Loader implements FileLoader over stores resolved by a Factory.
type Loader struct {
	binding
}

// NewLoader returns a loader resolving references through factory.
func NewLoader(factory *Factory, opts ...BindOption) *Loader {
	l := &Loader{binding: binding{factory: factory}}
	for _, opt := range opts {
		opt(&l.binding)
	}
	return l
}

// Load retrieves the object ref points at and delivers it to dst.
func (l *Loader) Load(ctx context.Context, ref string, dst Destination) (LoadResult, error) {
	store, key, err := l.resolve(ctx, ref)
	if err != nil {
		return LoadResult{}, err
	}

	rc, _, err := store.Get(ctx, key)
	if err != nil {
		return LoadResult{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return LoadResult{}, fmt.Errorf("%w: read %s: %w", ErrIO, key, err)
	}
	size := int64(len(data))

	switch d := dst.(type) {
	case bufferDestination:
		return LoadResult{Bytes: data, Size: size}, nil
	case pathDestination:
		if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
			return LoadResult{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if err := os.WriteFile(d.path, data, 0o644); err != nil {
			return LoadResult{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		return LoadResult{Path: d.path, Size: size}, nil
	case writerDestination:
		if _, err := d.w.Write(data); err != nil {
			return LoadResult{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		return LoadResult{Size: size}, nil
	default:
		return LoadResult{}, fmt.Errorf("%w: unknown destination %T", ErrInvalidURL, dst)
	}
}

// Persister implements FilePersister over stores resolved by a Factory.
type Persister struct {
	binding
}

// NewPersister returns a persister resolving references through factory.
func NewPersister(factory *Factory, opts ...BindOption) *Persister {
	p := &Persister{binding: binding{factory: factory}}
	for _, opt := range opts {
		opt(&p.binding)
	}
	return p
}

// Persist uploads src to the object ref points at, overwriting any existing
// object. Repeating a persist with the same source and key leaves the store
// unchanged.
func (p *Persister) Persist(ctx context.Context, ref string, src Source) (PersistResult, error) {
	store, key, err := p.resolve(ctx, ref)
	if err != nil {
		return PersistResult{}, err
	}

	var body io.Reader
	var size int64
	switch s := src.(type) {
	case bytesSource:
		body = bytes.NewReader(s.data)
		size = int64(len(s.data))
	case readerSource:
		data, err := io.ReadAll(s.r)
		if err != nil {
			return PersistResult{}, fmt.Errorf("%w: read source: %w", ErrIO, err)
		}
		body = bytes.NewReader(data)
		size = int64(len(data))
	case pathSource:
		f, err := os.Open(s.path)
		if err != nil {
			return PersistResult{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return PersistResult{}, fmt.Errorf("%w: %w", ErrIO, err)
		}
		body = f
		size = info.Size()
	default:
		return PersistResult{}, fmt.Errorf("%w: unknown source %T", ErrInvalidURL, src)
	}

	if err := store.Put(ctx, key, body); err != nil {
		return PersistResult{}, err
	}
	return PersistResult{Key: key, Size: size}, nil
}
