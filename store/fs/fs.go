// Package fs implements a filesystem-backed store. Each entry is one flat
// file under the configured root. File names carry the last path segment of
// the key (when it looks like a URL) for human inspection, prefixed with a
// short hash of the full key so distinct keys never collide.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"

	st "github.com/unkn0wn-root/fetchcache/store"
)

type Store struct {
	root string
}

var _ st.Store = (*Store)(nil)

type Config struct {
	Root string
}

func New(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, errors.New("fs store: root is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: cfg.Root}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Set writes atomically: temp file in the same directory, then rename.
// Readers never observe a partially written entry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) Close(_ context.Context) error { return nil }

func (s *Store) path(key string) string {
	return filepath.Join(s.root, fileName(key))
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	h := hex.EncodeToString(sum[:8])
	if seg := lastSegment(key); seg != "" {
		return h + "-" + seg
	}
	return h
}

// lastSegment extracts whatever follows the final '/' in the key, stripped
// of query/fragment and sanitized to filename-safe characters. Empty when
// the key has no usable segment.
func lastSegment(key string) string {
	i := strings.LastIndexByte(key, '/')
	if i < 0 || i == len(key)-1 {
		return ""
	}
	seg := key[i+1:]
	if q := strings.IndexAny(seg, "?#"); q >= 0 {
		seg = seg[:q]
	}
	var b strings.Builder
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	const maxSeg = 64
	out := b.String()
	if len(out) > maxSeg {
		out = out[:maxSeg]
	}
	return out
}
