package machine

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/fetchcache"
	fe "github.com/unkn0wn-root/fetchcache/fetcher"
	"github.com/unkn0wn-root/fetchcache/internal/util"
	"github.com/unkn0wn-root/fetchcache/internal/wire"
	st "github.com/unkn0wn-root/fetchcache/store"
)

// Interpreter performs exactly the I/O a state implies (store read while
// checking, fetch while downloading, store write while saving) and emits the
// resulting event. It never changes state itself; Reduce is the sole place
// state changes.
type Interpreter struct {
	ns      string
	store   st.Store
	fetcher fe.Fetcher
	log     fetchcache.Logger
	hooks   fetchcache.Hooks
}

type Config struct {
	// Required
	Namespace string
	Store     st.Store
	Fetcher   fe.Fetcher

	Logger fetchcache.Logger // nil => NopLogger
	Hooks  fetchcache.Hooks  // nil => NopHooks
}

func New(cfg Config) (*Interpreter, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("machine: store is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("machine: fetcher is required")
	}
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("machine: namespace is required")
	}
	it := &Interpreter{
		ns:      cfg.Namespace,
		store:   cfg.Store,
		fetcher: cfg.Fetcher,
		log:     cfg.Logger,
		hooks:   cfg.Hooks,
	}
	if it.log == nil {
		it.log = fetchcache.NopLogger{}
	}
	if it.hooks == nil {
		it.hooks = fetchcache.NopHooks{}
	}
	return it, nil
}

// Step runs the effect for s and returns the event it produced. ok=false
// when s implies no effect (terminal phases and idle), in which case the
// dispatch loop stops.
func (it *Interpreter) Step(ctx context.Context, s State) (Event, bool) {
	switch s.Phase {
	case PhaseChecking:
		return it.check(ctx, s.Key), true
	case PhaseDownloading:
		return it.download(ctx, s.Key), true
	case PhaseSaving:
		return it.save(ctx, s.Key, s.Payload), true
	}
	return Event{}, false
}

func (it *Interpreter) check(ctx context.Context, key string) Event {
	k := util.EntryKey(it.ns, key)
	raw, ok, err := it.store.Get(ctx, k)
	if err != nil {
		it.hooks.MissRecovered(k, "read_error")
		it.log.Debug("store read error; downloading", fetchcache.Fields{"key": key, "err": err})
		return Event{Type: EventCheckFailed}
	}
	if !ok {
		it.hooks.MissRecovered(k, "miss")
		return Event{Type: EventCheckFailed}
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		_ = it.store.Del(ctx, k) // self-heal corrupt
		it.hooks.SelfHeal(k, "corrupt")
		it.hooks.MissRecovered(k, "corrupt")
		return Event{Type: EventCheckFailed}
	}
	it.hooks.Hit(k)
	return Event{Type: EventCheckSucceeded, Payload: payload}
}

func (it *Interpreter) download(ctx context.Context, key string) Event {
	raw, err := it.fetcher.Fetch(ctx, key)
	if err == nil && raw == nil {
		err = fetchcache.ErrUndefinedFetchResponse
	}
	if err != nil {
		it.hooks.FetchFailed(util.EntryKey(it.ns, key), err)
		it.log.Debug("download failed", fetchcache.Fields{"key": key, "err": err})
		return Event{Type: EventDownloadFailed, Err: err}
	}
	return Event{Type: EventDownloadSucceeded, Payload: raw}
}

func (it *Interpreter) save(ctx context.Context, key string, payload []byte) Event {
	k := util.EntryKey(it.ns, key)
	if err := it.store.Set(ctx, k, wire.Encode(payload)); err != nil {
		it.hooks.SaveFailed(k, err)
		it.log.Warn("save failed; payload withheld", fetchcache.Fields{"key": key, "err": err})
		return Event{Type: EventSaveFailed, Err: err}
	}
	return Event{Type: EventSaveSucceeded}
}

// Run drives one request from idle to a terminal state through an explicit
// dispatch loop: events flow over a channel and Reduce is the only consumer
// that advances state. One event is in flight at a time; the steps execute
// strictly in check -> download -> save order.
func (it *Interpreter) Run(ctx context.Context, key string) State {
	events := make(chan Event, 1)
	events <- Event{Type: EventDownload, Key: key}

	s := State{Phase: PhaseIdle}
	for {
		s = Reduce(s, <-events)
		if s.Terminal() {
			return s
		}
		ev, ok := it.Step(ctx, s)
		if !ok {
			return s
		}
		events <- ev
	}
}

// Provide runs the machine for key and maps its terminal state onto the same
// contract as the composed provider: cached or downloaded payload on
// success, a stage-tagged error otherwise.
func (it *Interpreter) Provide(ctx context.Context, key string) ([]byte, error) {
	s := it.Run(ctx, key)
	switch s.Phase {
	case PhaseFinished:
		return s.Payload, nil
	case PhaseDownloadFailed:
		return nil, &fetchcache.StageError{Stage: fetchcache.StageFetch, Key: key, Err: s.Err}
	case PhaseSaveFailed:
		return nil, &fetchcache.StageError{Stage: fetchcache.StageSave, Key: key, Err: s.Err}
	}
	return nil, fmt.Errorf("machine: stopped in non-terminal phase %q", s.Phase)
}
