package machine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/fetchcache"
	fe "github.com/unkn0wn-root/fetchcache/fetcher"
	"github.com/unkn0wn-root/fetchcache/internal/util"
	"github.com/unkn0wn-root/fetchcache/internal/wire"
	st "github.com/unkn0wn-root/fetchcache/store"
)

type memStore struct {
	mu     sync.Mutex
	m      map[string][]byte
	getErr error
	setErr error
	sets   int
}

var _ st.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.m[key] = value
	return nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStore) Close(_ context.Context) error { return nil }

func newTestInterpreter(t *testing.T, ms st.Store, f fe.Fetcher) *Interpreter {
	t.Helper()
	it, err := New(Config{Namespace: "img", Store: ms, Fetcher: f})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return it
}

// TestRunMissDownloadsAndSaves: empty store -> checking -> downloading ->
// saving -> finished with the downloaded payload persisted.
func TestRunMissDownloadsAndSaves(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	d := []byte("remote")
	var calls int
	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		calls++
		return d, nil
	})
	it := newTestInterpreter(t, ms, f)

	key := "https://example.com/a.png"
	s := it.Run(ctx, key)
	if s.Phase != PhaseFinished {
		t.Fatalf("terminal phase = %v, want finished", s.Phase)
	}
	if string(s.Payload) != "remote" {
		t.Fatalf("payload = %q, want downloaded bytes", s.Payload)
	}
	if calls != 1 {
		t.Fatalf("fetcher invoked %d times, want 1", calls)
	}
	if ms.sets != 1 {
		t.Fatalf("store.Set invoked %d times, want 1", ms.sets)
	}

	// stored entry decodes back to the same payload
	raw, ok, _ := ms.Get(ctx, util.EntryKey("img", key))
	if !ok {
		t.Fatal("entry missing after save")
	}
	payload, err := wire.Decode(raw)
	if err != nil || string(payload) != "remote" {
		t.Fatalf("stored entry = (%q, %v), want downloaded bytes", payload, err)
	}
}

// TestRunHitFinishesWithoutDownload: checkSucceeded jumps straight to
// finished; neither fetch nor save runs.
func TestRunHitFinishesWithoutDownload(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	key := "https://example.com/b.png"
	_ = ms.Set(ctx, util.EntryKey("img", key), wire.Encode([]byte("cached")))
	ms.sets = 0

	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		t.Fatal("fetcher invoked on a hit")
		return nil, nil
	})
	it := newTestInterpreter(t, ms, f)

	s := it.Run(ctx, key)
	if s.Phase != PhaseFinished {
		t.Fatalf("terminal phase = %v, want finished", s.Phase)
	}
	if string(s.Payload) != "cached" {
		t.Fatalf("payload = %q, want cached bytes", s.Payload)
	}
	if ms.sets != 0 {
		t.Fatalf("store.Set invoked %d times on a hit, want 0", ms.sets)
	}
}

func TestRunDownloadFailure(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	boom := errors.New("dns melted")
	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		return nil, boom
	})
	it := newTestInterpreter(t, ms, f)

	s := it.Run(ctx, "https://example.com/c.png")
	if s.Phase != PhaseDownloadFailed {
		t.Fatalf("terminal phase = %v, want downloadFailed", s.Phase)
	}
	if !errors.Is(s.Err, boom) {
		t.Fatalf("terminal err = %v, want %v", s.Err, boom)
	}
	if ms.sets != 0 {
		t.Fatalf("store.Set invoked %d times after download failure, want 0", ms.sets)
	}
}

func TestRunUndefinedFetchResponse(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		return nil, nil // neither payload nor error
	})
	it := newTestInterpreter(t, ms, f)

	s := it.Run(ctx, "https://example.com/d.png")
	if s.Phase != PhaseDownloadFailed {
		t.Fatalf("terminal phase = %v, want downloadFailed", s.Phase)
	}
	if !errors.Is(s.Err, fetchcache.ErrUndefinedFetchResponse) {
		t.Fatalf("terminal err = %v, want ErrUndefinedFetchResponse", s.Err)
	}
}

func TestRunSaveFailure(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	boom := errors.New("disk full")
	ms.setErr = boom
	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		return []byte("remote"), nil
	})
	it := newTestInterpreter(t, ms, f)

	s := it.Run(ctx, "https://example.com/e.png")
	if s.Phase != PhaseSaveFailed {
		t.Fatalf("terminal phase = %v, want saveFailed", s.Phase)
	}
	if !errors.Is(s.Err, boom) {
		t.Fatalf("terminal err = %v, want %v", s.Err, boom)
	}
}

// TestProvideMatchesComposedContract: the terminal-state mapping produces
// the same stage-tagged errors as the composed provider.
func TestProvideMatchesComposedContract(t *testing.T) {
	ctx := context.Background()

	t.Run("finished", func(t *testing.T) {
		ms := newMemStore()
		f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
			return []byte("remote"), nil
		})
		it := newTestInterpreter(t, ms, f)
		got, err := it.Provide(ctx, "https://example.com/f.png")
		if err != nil || string(got) != "remote" {
			t.Fatalf("Provide = (%q, %v), want downloaded bytes", got, err)
		}
	})

	t.Run("download failed", func(t *testing.T) {
		ms := newMemStore()
		boom := errors.New("boom")
		f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
			return nil, boom
		})
		it := newTestInterpreter(t, ms, f)
		_, err := it.Provide(ctx, "https://example.com/g.png")
		var se *fetchcache.StageError
		if !errors.As(err, &se) || se.Stage != fetchcache.StageFetch || !errors.Is(err, boom) {
			t.Fatalf("err = %v, want fetch-stage StageError wrapping boom", err)
		}
	})

	t.Run("save failed", func(t *testing.T) {
		ms := newMemStore()
		boom := errors.New("boom")
		ms.setErr = boom
		f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
			return []byte("remote"), nil
		})
		it := newTestInterpreter(t, ms, f)
		got, err := it.Provide(ctx, "https://example.com/h.png")
		if got != nil {
			t.Fatalf("payload %q returned despite save failure", got)
		}
		var se *fetchcache.StageError
		if !errors.As(err, &se) || se.Stage != fetchcache.StageSave || !errors.Is(err, boom) {
			t.Fatalf("err = %v, want save-stage StageError wrapping boom", err)
		}
	})
}

// TestStepTerminalIsInert: the interpreter performs no further action once a
// terminal state is reached.
func TestStepTerminalIsInert(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		t.Fatal("fetcher invoked from a terminal state")
		return nil, nil
	})
	it := newTestInterpreter(t, ms, f)

	for _, s := range []State{
		{Phase: PhaseFinished, Key: "k", Payload: []byte("d")},
		{Phase: PhaseDownloadFailed, Key: "k", Err: errors.New("x")},
		{Phase: PhaseSaveFailed, Key: "k", Err: errors.New("x")},
		{Phase: PhaseIdle},
	} {
		if ev, ok := it.Step(ctx, s); ok {
			t.Errorf("Step(%v) produced event %+v, want none", s.Phase, ev)
		}
	}
	if ms.sets != 0 {
		t.Fatalf("store.Set invoked %d times from terminal states, want 0", ms.sets)
	}
}

// TestRunSelfHealsCorruptEntry: a corrupt cached frame routes to download
// and is removed from the store.
func TestRunSelfHealsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	ms := newMemStore()
	key := "https://example.com/i.png"
	_ = ms.Set(ctx, util.EntryKey("img", key), []byte("garbage"))
	ms.sets = 0

	f := fe.Func(func(_ context.Context, _ string) ([]byte, error) {
		return []byte("fresh"), nil
	})
	it := newTestInterpreter(t, ms, f)

	s := it.Run(ctx, key)
	if s.Phase != PhaseFinished || string(s.Payload) != "fresh" {
		t.Fatalf("Run = %+v, want finished with fresh payload", s)
	}
	raw, ok, _ := ms.Get(ctx, util.EntryKey("img", key))
	if !ok {
		t.Fatal("entry missing after re-save")
	}
	if payload, err := wire.Decode(raw); err != nil || string(payload) != "fresh" {
		t.Fatalf("stored entry = (%q, %v), want fresh payload", payload, err)
	}
}
