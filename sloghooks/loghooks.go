// Package sloghooks logs fetchcache hook events through log/slog, with
// sampling for the chatty ones and key redaction for anything that may carry
// a sensitive identifier.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/fetchcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ fetchcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("fetchcache.hit",
		"key", h.redact(storageKey))
}

func (h *Hooks) MissRecovered(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("fetchcache.miss_recovered",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("fetchcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) FetchFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fetchcache.fetch_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) SaveFailed(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("fetchcache.save_failed",
		"key", h.redact(storageKey),
		"err", err)
}
