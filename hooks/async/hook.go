// Package asynchook decouples hook execution from the provider's hot path.
// Events are queued to a small worker pool; when the queue is full they are
// dropped rather than blocking a Provide call.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    MissEvery: 10, // sample logs: ~every 10th recovered miss
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	p, _ := fetchcache.New[[]byte](fetchcache.Options[[]byte]{
//	    Namespace: "images",
//	    Store:     store,
//	    Fetcher:   fetcher,
//	    Codec:     codec.Bytes{},
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/fetchcache"
)

type Hooks struct {
	inner fetchcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ fetchcache.Hooks = (*Hooks)(nil)

func New(inner fetchcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(k string)                  { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) MissRecovered(k, r string)     { h.try(func() { h.inner.MissRecovered(k, r) }) }
func (h *Hooks) SelfHeal(k, r string)          { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) FetchFailed(k string, e error) { h.try(func() { h.inner.FetchFailed(k, e) }) }
func (h *Hooks) SaveFailed(k string, e error)  { h.try(func() { h.inner.SaveFailed(k, e) }) }
