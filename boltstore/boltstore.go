// Package boltstore backs workstate with an embedded bbolt database.
package boltstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/sagikazarmark/workstate"
)

var objectsBucket = []byte("objects")

// Store implements workstate.Store over a bbolt database with a single
// objects bucket.
type Store struct {
	db *bolt.DB
}

// Open resolves a bolt:// URL to an on-disk database file. The file comes
// from the "path" client option when set, otherwise
// <data_dir>/<authority>.db. Register with f.RegisterScheme("bolt", boltstore.Open).
func Open(ctx context.Context, u *workstate.StoreURL, opts workstate.Options) (workstate.Store, error) {
	path := opts["path"]
	if path == "" {
		base := opts["data_dir"]
		if base == "" {
			base = os.TempDir()
		}
		path = filepath.Join(base, u.Authority+".db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt db dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt db at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(objectsBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get %s: %w", workstate.ErrIO, key, err)
	}
	if data == nil {
		return nil, 0, fmt.Errorf("%w: %s", workstate.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body for %s: %w", workstate.ErrIO, key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(objectsBucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", workstate.ErrIO, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(objectsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			key := string(k)
			if prefix == "" || key == prefix || strings.HasPrefix(key, strings.TrimSuffix(prefix, "/")+"/") {
				keys = append(keys, key)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", workstate.ErrIO, prefix, err)
	}
	return keys, nil
}

func (s *Store) Close() error { return s.db.Close() }
