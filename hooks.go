package fetchcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The provider calls them on hot paths.
type Hooks interface {
	// Store read served the request; no fetch occurred.
	Hit(storageKey string)

	// Store read did not produce a usable entry and the request routes to
	// the fetcher. reason ∈ {"miss", "read_error", "corrupt", "value_decode"}
	MissRecovered(storageKey, reason string)

	// A cached entry was deleted by the provider on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Fetcher failed (includes the synthesized undefined-response case).
	FetchFailed(storageKey string, err error)

	// Store write failed after a successful fetch; the payload was withheld.
	SaveFailed(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                   {}
func (NopHooks) MissRecovered(string, string) {}
func (NopHooks) SelfHeal(string, string)      {}
func (NopHooks) FetchFailed(string, error)    {}
func (NopHooks) SaveFailed(string, error)     {}
