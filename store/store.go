// Package store defines the persistence abstraction used by fetchcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a backend
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
//
// Important: the keyspace "entry:<ns>:" is owned by fetchcache. External
// code MUST NOT write values under this prefix. Foreign writes may be
// treated as corruption by strict wire-format validation and deleted.
package store

import (
	"context"
)

// Store is a minimal durable byte store keyed by resource identifier.
// Must be safe for concurrent use from any number of in-flight requests;
// fetchcache adds no synchronization of its own.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err). The provider
	// treats miss and read error identically: both route to the fetcher.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, creating any underlying namespace or
	// directory structure it needs. Failure must be distinguishable from
	// success; it need not be further categorized.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
