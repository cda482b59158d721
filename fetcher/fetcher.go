// Package fetcher defines the remote-retrieval abstraction used by
// fetchcache. A Fetcher resolves a resource identifier to its bytes over a
// network-like channel; fetchcache invokes it only after the store could not
// serve the request.
package fetcher

import "context"

// Fetcher retrieves the payload for a resource identifier. Implementations
// must be safe for concurrent use and must return exactly once per call:
// either the payload or an error, never neither. (The provider guards the
// "neither" case anyway and synthesizes an error, but a well-behaved
// Fetcher should not rely on that.)
//
// Fetchers do not retry, rate-limit, or cache; that is the caller's layer.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, key string) ([]byte, error)

func (f Func) Fetch(ctx context.Context, key string) ([]byte, error) { return f(ctx, key) }
