// Package fetchcache implements a store-agnostic read-through payload
// provider: one Provide call that serves bytes from a local Store or, on a
// miss, downloads them via a Fetcher and persists the result before
// returning it. A store-read failure is never surfaced; it always routes to
// the download path. A save failure after a successful download is surfaced
// and the downloaded payload is withheld: persistence is a precondition for
// declaring success.
//
// Components:
//   - Store: byte store keyed by resource identifier (e.g. BigCache,
//     Ristretto, Redis, local filesystem).
//   - Fetcher: remote retrieval of bytes for an identifier (e.g. HTTP).
//   - Codec[V]: (de)serializes V <-> []byte.
//
// Keys:
//
//	entry:<ns>:<key> - cached payloads, framed by an internal wire header
//	                   so corrupt or foreign entries are detected on read,
//	                   deleted, and treated as a miss.
//
// Read-through pattern:
//
//	p, _ := fetchcache.New[[]byte](fetchcache.Options[[]byte]{
//	    Namespace: "images",
//	    Store:     st,
//	    Fetcher:   httpfetch.New(httpfetch.Config{}),
//	    Codec:     codec.Bytes{},
//	})
//	data, err := p.Provide(ctx, url) // hit: cached bytes; miss: fetch+save
//
// The machine subpackage expresses the same contract as a pure state-machine
// reducer plus an effect interpreter, for callers who need the orchestration
// logic testable without I/O.
package fetchcache
