// Package httpfetch implements fetcher.Fetcher over HTTP. The resource
// identifier is the request URL; the response body is the payload.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	fe "github.com/unkn0wn-root/fetchcache/fetcher"
)

type Fetcher struct {
	client  *http.Client
	maxBody int64
}

var _ fe.Fetcher = (*Fetcher)(nil)

type Config struct {
	Client  *http.Client  // nil => dedicated client with Timeout
	Timeout time.Duration // only used when Client is nil; 0 => 30s
	MaxBody int64         // reject larger responses; 0 = unlimited
}

func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client, maxBody: cfg.MaxBody}
}

// StatusError reports a non-2xx response. The body is discarded.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpfetch: %s: unexpected status %d", e.URL, e.Status)
}

func (f *Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: key, Status: resp.StatusCode}
	}

	r := io.Reader(resp.Body)
	if f.maxBody > 0 {
		r = io.LimitReader(r, f.maxBody+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if f.maxBody > 0 && int64(len(b)) > f.maxBody {
		return nil, fmt.Errorf("httpfetch: %s: body exceeds %d bytes", key, f.maxBody)
	}
	if b == nil {
		// keep an empty 200 response distinguishable from "no payload"
		b = []byte{}
	}
	return b, nil
}
