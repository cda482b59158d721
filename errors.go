package fetchcache

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefinedFetchResponse is synthesized when a Fetcher completes with
	// neither payload nor error. Surfaced as a fetch-stage failure.
	ErrUndefinedFetchResponse = errors.New("fetchcache: fetcher returned neither payload nor error")

	// ErrClosed reports that the provider was closed before an in-flight
	// request could complete. The caller still receives exactly one outcome.
	ErrClosed = errors.New("fetchcache: provider closed")
)

// Stage names the pipeline step a failure belongs to. Store reads have no
// stage: a read failure is recovered into the fetch path, never surfaced.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageSave  Stage = "save"
)

// StageError tags a collaborator failure with the pipeline stage it occurred
// in. Unwrap exposes the underlying error so errors.Is/As reach the
// Fetcher's or Store's own sentinel.
type StageError struct {
	Stage Stage
	Key   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("fetchcache: %s %q: %v", e.Stage, e.Key, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fetchErr(key string, err error) error {
	return &StageError{Stage: StageFetch, Key: key, Err: err}
}

func saveErr(key string, err error) error {
	return &StageError{Stage: StageSave, Key: key, Err: err}
}
