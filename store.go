package workstate

import (
	"context"
	"io"
)

// Store is a connected handle bound to a single store root. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns a reader for the object at key along with its size, or an
	// error wrapping ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Put writes the full content of body to key, overwriting any existing
	// object.
	Put(ctx context.Context, key string, body io.Reader) error
	// List returns the keys of all objects under prefix, in unspecified order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Close releases any resources held by the handle.
	Close() error
}

// Options carries backend configuration (credentials, region, endpoint
// overrides). Keys are backend-specific and passed through unvalidated.
type Options map[string]string
