// Package workstate persists and loads state between steps of a durable
// workflow. State lives in a key-addressed object store resolved from a URL
// such as s3://bucket/state/step1.bin or memory://bucket/state/step1.bin.
//
// The package is a thin adapter: callers hand it a URL and bytes (or a local
// path), it resolves a store handle and performs a single get or put. Retry,
// step identity, and scheduling belong to the orchestrator calling it.
package workstate

import "context"

// FileLoader retrieves a single object into a destination.
type FileLoader interface {
	Load(ctx context.Context, ref string, dst Destination) (LoadResult, error)
}

// FilePersister uploads a single object from a source.
type FilePersister interface {
	Persist(ctx context.Context, ref string, src Source) (PersistResult, error)
}

// DirectoryLoader downloads every object under a prefix into a local directory.
type DirectoryLoader interface {
	LoadDir(ctx context.Context, ref string, dst string, filter Filter) error
}

// DirectoryPersister uploads every file under a local directory to a prefix.
type DirectoryPersister interface {
	PersistDir(ctx context.Context, ref string, src string, filter Filter) error
}
