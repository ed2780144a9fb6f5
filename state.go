package workstate

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// SaveOptions controls where and which staged files are uploaded.
type SaveOptions struct {
	// Prefix is prepended to every uploaded key. May be empty.
	Prefix string
	// Filter selects which staged files are uploaded. Nil uploads everything.
	Filter Filter
}

// StateManager checkpoints workflow state: Save stages a scratch directory
// for the caller to fill, then uploads whatever survived to the store.
type StateManager struct {
	store  Store
	logger *zap.Logger
}

// StateManagerOption configures a StateManager.
type StateManagerOption func(*StateManager)

// WithLogger sets the logger used to report uploads. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) StateManagerOption {
	return func(m *StateManager) { m.logger = logger }
}

// NewStateManager returns a manager uploading to the given store.
func NewStateManager(store Store, opts ...StateManagerOption) *StateManager {
	m := &StateManager{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Save creates a scratch directory, invokes fn with it, and uploads every
// file fn left behind (subject to opts.Filter) under opts.Prefix. The scratch
// directory is removed afterwards. If fn fails nothing is uploaded.
func (m *StateManager) Save(ctx context.Context, opts SaveOptions, fn func(dir string) error) error {
	if opts.Prefix != "" {
		if err := validateKey(opts.Prefix); err != nil {
			return err
		}
	}

	dir, err := os.MkdirTemp("", "workstate-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer os.RemoveAll(dir)

	if err := fn(dir); err != nil {
		return err
	}

	return walkFiles(dir, opts.Filter, func(path, rel string) error {
		key := rel
		if opts.Prefix != "" {
			key = opts.Prefix + "/" + rel
		}

		m.logger.Info("uploading file", zap.String("file", rel), zap.String("key", key))

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
		defer f.Close()
		return m.store.Put(ctx, key, f)
	})
}

// Restore downloads every object under opts.Prefix into dir, recreating the
// key hierarchy. The inverse of Save.
func (m *StateManager) Restore(ctx context.Context, opts SaveOptions, dir string) error {
	if opts.Prefix != "" {
		if err := validateKey(opts.Prefix); err != nil {
			return err
		}
	}

	return loadPrefix(ctx, m.store, opts.Prefix, dir, opts.Filter)
}
