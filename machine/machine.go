// Package machine expresses the read-through pipeline as an explicit state
// machine: a pure transition function (Reduce) plus an effect interpreter
// that performs the I/O a state implies and emits the next event. Behavior
// is identical to the composed provider in the root package; this form
// exists so the orchestration logic can be tested without any I/O.
package machine

// Phase is the position of one in-flight request in its lifecycle. A request
// starts at PhaseIdle and reaches exactly one of the terminal phases.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseDownloading
	PhaseSaving
	PhaseFinished
	PhaseDownloadFailed
	PhaseSaveFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseDownloading:
		return "downloading"
	case PhaseSaving:
		return "saving"
	case PhaseFinished:
		return "finished"
	case PhaseDownloadFailed:
		return "download_failed"
	case PhaseSaveFailed:
		return "save_failed"
	}
	return "unknown"
}

// State is a value; transitions never mutate, they return a new State.
// Payload is set while saving and in PhaseFinished; Err only in the failure
// phases.
type State struct {
	Phase   Phase
	Key     string
	Payload []byte
	Err     error
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	switch s.Phase {
	case PhaseFinished, PhaseDownloadFailed, PhaseSaveFailed:
		return true
	}
	return false
}

type EventType uint8

const (
	EventDownload EventType = iota
	EventCheckSucceeded
	EventCheckFailed
	EventDownloadSucceeded
	EventDownloadFailed
	EventSaveRequested
	EventSaveSucceeded
	EventSaveFailed
)

type Event struct {
	Type    EventType
	Key     string
	Payload []byte
	Err     error
}

// Reduce is the pure transition function. No side effects occur here; the
// interpreter is the only component that touches a Store or Fetcher. Any
// (state, event) pair not listed below is a no-op returning s unchanged,
// which also makes every terminal phase absorbing.
func Reduce(s State, e Event) State {
	switch {
	case s.Phase == PhaseIdle && e.Type == EventDownload:
		return State{Phase: PhaseChecking, Key: e.Key}
	case s.Phase == PhaseChecking && e.Type == EventCheckSucceeded:
		return State{Phase: PhaseFinished, Key: s.Key, Payload: e.Payload}
	case s.Phase == PhaseChecking && e.Type == EventCheckFailed:
		return State{Phase: PhaseDownloading, Key: s.Key}
	case s.Phase == PhaseDownloading && e.Type == EventDownloadSucceeded:
		return State{Phase: PhaseSaving, Key: s.Key, Payload: e.Payload}
	case s.Phase == PhaseDownloading && e.Type == EventDownloadFailed:
		return State{Phase: PhaseDownloadFailed, Key: s.Key, Err: e.Err}
	case s.Phase == PhaseSaving && e.Type == EventSaveSucceeded:
		// the originally downloaded payload, never a re-read
		return State{Phase: PhaseFinished, Key: s.Key, Payload: s.Payload}
	case s.Phase == PhaseSaving && e.Type == EventSaveFailed:
		return State{Phase: PhaseSaveFailed, Key: s.Key, Err: e.Err}
	}
	return s
}
