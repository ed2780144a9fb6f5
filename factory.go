package workstate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// OpenFunc opens a backend handle for a resolved URL. Implementations live in
// the backend subpackages; the memory and file backends are built in.
type OpenFunc func(ctx context.Context, u *StoreURL, opts Options) (Store, error)

// Factory resolves store URLs and hands out connected handles. Handles are
// cached per (scheme, authority, options) tuple and reused until Close, so
// repeated operations against the same root share one connection. The zero
// value is not usable; construct with NewFactory.
type Factory struct {
	mu      sync.Mutex
	schemes map[string]OpenFunc
	cache   map[string]Store
	opts    Options
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithOptions sets default client options applied to every Open call. Options
// passed to Open override these per key.
func WithOptions(opts Options) FactoryOption {
	return func(f *Factory) { f.opts = opts }
}

// NewFactory returns a factory with the memory and file schemes registered.
// Additional schemes (s3, badger, bolt) are registered from their subpackages
// via RegisterScheme.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		schemes: map[string]OpenFunc{
			"memory": openMemory,
			"file":   openFS,
		},
		cache: make(map[string]Store),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterScheme makes scheme resolvable through this factory. Registering an
// already known scheme replaces the previous opener.
func (f *Factory) RegisterScheme(scheme string, open OpenFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemes[scheme] = open
}

// Resolve parses raw and rejects schemes no backend is registered for.
func (f *Factory) Resolve(raw string) (*StoreURL, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	_, ok := f.schemes[u.Scheme]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized scheme %q", ErrInvalidURL, u.Scheme)
	}
	return u, nil
}

// Open returns a handle for the store root identified by u, reusing a cached
// handle when one exists for the same (scheme, authority, options) tuple.
// Backend failures wrap ErrStoreConnection.
func (f *Factory) Open(ctx context.Context, u *StoreURL, opts Options) (Store, error) {
	merged := f.mergeOptions(opts)
	key := cacheKey(u, merged)

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.cache[key]; ok {
		return s, nil
	}

	open, ok := f.schemes[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized scheme %q", ErrInvalidURL, u.Scheme)
	}
	s, err := open(ctx, u, merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %s://%s: %w", ErrStoreConnection, u.Scheme, u.Authority, err)
	}
	f.cache[key] = s
	return s, nil
}

// Close tears down every cached handle. The factory can be reused afterwards;
// subsequent Opens construct fresh handles.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for key, s := range f.cache {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(f.cache, key)
	}
	return firstErr
}

func (f *Factory) mergeOptions(opts Options) Options {
	if len(f.opts) == 0 {
		return opts
	}
	merged := make(Options, len(f.opts)+len(opts))
	for k, v := range f.opts {
		merged[k] = v
	}
	for k, v := range opts {
		merged[k] = v
	}
	return merged
}

func cacheKey(u *StoreURL, opts Options) string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Authority)

	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('?')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(opts[k])
	}
	return b.String()
}
