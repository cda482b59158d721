package fetchcache

import (
	"context"
	"fmt"
	"sync/atomic"

	c "github.com/unkn0wn-root/fetchcache/codec"
	fe "github.com/unkn0wn-root/fetchcache/fetcher"
	"github.com/unkn0wn-root/fetchcache/internal/util"
	"github.com/unkn0wn-root/fetchcache/internal/wire"
	st "github.com/unkn0wn-root/fetchcache/store"
)

type provider[V any] struct {
	ns      string
	store   st.Store
	fetcher fe.Fetcher
	codec   c.Codec[V]
	log     Logger
	hooks   Hooks
	enabled bool
	closed  atomic.Bool
}

func newProvider[V any](opts Options[V]) (*provider[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("fetchcache: store is required")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetchcache: fetcher is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("fetchcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("fetchcache: namespace is required")
	}

	p := &provider[V]{
		ns:      opts.Namespace,
		store:   opts.Store,
		fetcher: opts.Fetcher,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}

	// defaults
	p.log = coalesce[Logger](opts.Logger, NopLogger{})
	p.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	return p, nil
}

func (p *provider[V]) Enabled() bool { return p.enabled }

// Close marks the provider closed and releases the store. In-flight requests
// that have not yet persisted their download fail with ErrClosed; their
// callers still receive exactly one outcome.
func (p *provider[V]) Close(ctx context.Context) error {
	p.closed.Store(true)
	if p.store != nil {
		return p.store.Close(ctx)
	}
	return nil
}

func (p *provider[V]) Provide(ctx context.Context, key string) (V, error) {
	var zero V
	if p.closed.Load() {
		return zero, ErrClosed
	}

	k := util.EntryKey(p.ns, key)
	if p.enabled {
		if v, ok := p.lookup(ctx, k); ok {
			return v, nil
		}
	}

	raw, err := p.fetcher.Fetch(ctx, key)
	if err == nil && raw == nil {
		// completion with neither payload nor error; never pass that on silently
		err = ErrUndefinedFetchResponse
	}
	if err != nil {
		p.hooks.FetchFailed(k, err)
		p.log.Debug("fetch failed", Fields{"key": key, "err": err})
		return zero, fetchErr(key, err)
	}

	v, err := p.codec.Decode(raw)
	if err != nil {
		p.hooks.FetchFailed(k, err)
		p.log.Debug("fetched payload undecodable", Fields{"key": key, "err": err})
		return zero, fetchErr(key, err)
	}

	if !p.enabled {
		return v, nil
	}
	if p.closed.Load() {
		// closed between download and save; the payload is withheld
		return zero, saveErr(key, ErrClosed)
	}
	if err := p.store.Set(ctx, k, wire.Encode(raw)); err != nil {
		p.hooks.SaveFailed(k, err)
		p.log.Warn("save failed; payload withheld", Fields{"key": key, "err": err})
		return zero, saveErr(key, err)
	}
	return v, nil
}

func (p *provider[V]) ProvideAsync(ctx context.Context, key string, fn func(Outcome[V])) {
	go func() {
		v, err := p.Provide(ctx, key)
		fn(Outcome[V]{Value: v, Err: err})
	}()
}

func (p *provider[V]) Seed(ctx context.Context, key string, value V) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.enabled {
		return nil
	}
	raw, err := p.codec.Encode(value)
	if err != nil {
		return err
	}
	k := util.EntryKey(p.ns, key)
	if err := p.store.Set(ctx, k, wire.Encode(raw)); err != nil {
		p.hooks.SaveFailed(k, err)
		return saveErr(key, err)
	}
	return nil
}

func (p *provider[V]) Invalidate(ctx context.Context, key string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.enabled {
		return nil
	}
	k := util.EntryKey(p.ns, key)
	if err := p.store.Del(ctx, k); err != nil {
		return fmt.Errorf("fetchcache: invalidate %q: %w", key, err)
	}
	p.log.Debug("invalidated entry", Fields{"key": key})
	return nil
}

// lookup reads the cached entry for storage key k. Every failure mode (miss,
// read error, corrupt frame, undecodable value) reports false: the caller
// goes to the fetcher. Corrupt and undecodable entries are deleted so the
// next save starts clean.
func (p *provider[V]) lookup(ctx context.Context, k string) (V, bool) {
	var zero V
	raw, ok, err := p.store.Get(ctx, k)
	if err != nil {
		p.hooks.MissRecovered(k, "read_error")
		p.log.Debug("store read error; falling back to fetch", Fields{"key": k, "err": err})
		return zero, false
	}
	if !ok {
		p.hooks.MissRecovered(k, "miss")
		return zero, false
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		_ = p.store.Del(ctx, k) // self-heal corrupt
		p.hooks.SelfHeal(k, "corrupt")
		p.hooks.MissRecovered(k, "corrupt")
		return zero, false
	}
	v, err := p.codec.Decode(payload)
	if err != nil {
		_ = p.store.Del(ctx, k) // self-heal
		p.hooks.SelfHeal(k, "value_decode")
		p.hooks.MissRecovered(k, "value_decode")
		return zero, false
	}
	p.hooks.Hit(k)
	return v, true
}
