// Package badgerstore backs workstate with an embedded badger database,
// useful for durable local state without an external store.
package badgerstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/sagikazarmark/workstate"
)

// Store implements workstate.Store over a badger database. One database per
// URL authority; keys map to badger keys directly.
type Store struct {
	db *badger.DB
}

// Open resolves a badger:// URL to an on-disk database. The database
// directory comes from the "path" client option when set, otherwise
// <data_dir>/<authority> where data_dir defaults to the option of the same
// name or os.TempDir(). Register with f.RegisterScheme("badger", badgerstore.Open).
func Open(ctx context.Context, u *workstate.StoreURL, opts workstate.Options) (workstate.Store, error) {
	dir := opts["path"]
	if dir == "" {
		base := opts["data_dir"]
		if base == "" {
			base = os.TempDir()
		}
		dir = filepath.Join(base, u.Authority)
	}

	badgerOpts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, 0, fmt.Errorf("%w: %s", workstate.ErrNotFound, key)
		}
		return nil, 0, fmt.Errorf("%w: get %s: %w", workstate.ErrIO, key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: read body for %s: %w", workstate.ErrIO, key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %w", workstate.ErrIO, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			if prefix != "" && key != prefix && !strings.HasPrefix(key, strings.TrimSuffix(prefix, "/")+"/") {
				continue
			}
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", workstate.ErrIO, prefix, err)
	}
	return keys, nil
}

func (s *Store) Close() error { return s.db.Close() }
