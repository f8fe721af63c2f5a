// Package cache implements remote, additive tiers for the incremental
// build cache. The JSON-per-source compilation database written under a
// module's own .ebuild directory is always the source of truth; a Backend
// here only hydrates or mirrors it, and its failures are never fatal to a
// build.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get* methods when a key is absent from the
// backing store.
var ErrNotFound = errors.New("cache: not found")

// Backend is a remote tier behind the local incremental cache. Every method
// is best-effort from the caller's perspective: a Backend error is logged
// and treated as a miss, never as a build failure.
type Backend interface {
	// GetCompDB fetches a previously stored compilation-database entry by
	// key (see ebuild.compDBKey for how the key is derived).
	GetCompDB(ctx context.Context, key string) ([]byte, error)
	// PutCompDB stores a compilation-database entry by key.
	PutCompDB(ctx context.Context, key string, data []byte) error

	// GetObject fetches a previously stored build artifact (object file,
	// archive, or shared library) by key.
	GetObject(ctx context.Context, key string, dst string) error
	// PutObject stores a build artifact by key.
	PutObject(ctx context.Context, key string, src string) error

	// Close releases any resources the backend holds.
	Close() error
}
