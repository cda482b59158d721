package fetchcache

import (
	"context"

	c "github.com/unkn0wn-root/fetchcache/codec"
	fe "github.com/unkn0wn-root/fetchcache/fetcher"
	st "github.com/unkn0wn-root/fetchcache/store"
)

// Provider is the high-level read-through API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
//
// Every Provide/ProvideAsync call produces exactly one outcome: the cached
// value, the freshly downloaded value (after it was persisted), or an error.
// Concurrent calls for the same key are independent; the provider does not
// coalesce them into one download.
type Provider[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Provide returns the value for key, reading through to the Fetcher on
	// a store miss and persisting the result before returning it.
	Provide(ctx context.Context, key string) (V, error)

	// ProvideAsync runs Provide on its own goroutine and delivers exactly
	// one Outcome to fn, even when the provider is closed mid-flight.
	ProvideAsync(ctx context.Context, key string, fn func(Outcome[V]))

	// Seed persists a value without fetching (cache warm-up / write path).
	Seed(ctx context.Context, key string, value V) error

	// Invalidate drops the cached entry so the next Provide fetches.
	Invalidate(ctx context.Context, key string) error
}

// Outcome is the single-delivery result of an asynchronous Provide. Exactly
// one of Value/Err is meaningful: Err == nil means Value holds the payload.
type Outcome[V any] struct {
	Value V
	Err   error
}

// Options tune the provider. Namespace, Store, Fetcher and Codec are
// required; the rest have working defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid key collisions, e.g. "images"
	Store     st.Store
	Fetcher   fe.Fetcher
	Codec     c.Codec[V]

	Logger   Logger // if nil, NopLogger is used
	Hooks    Hooks  // if nil, NopHooks is used
	Disabled bool   // bypass the store entirely: every call fetches, nothing persists
}

func New[V any](opts Options[V]) (Provider[V], error) {
	return newProvider[V](opts)
}
