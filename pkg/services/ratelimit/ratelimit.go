// Package ratelimit implements fixed-window request counters keyed by client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Policy caps a key at Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Entry is the state kept for one key.
type Entry struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// Expired reports whether the window has closed at now.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ResetAt)
}

// Store persists entries. Take applies one request to key and reports whether it was allowed.
type Store interface {
	Take(ctx context.Context, key string, now time.Time, p Policy) (bool, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// advance applies a request to the current entry. A missing or expired entry
// opens a new window, a full window rejects without changing state.
func advance(e Entry, found bool, now time.Time, p Policy) (Entry, bool) {
	if !found || e.Expired(now) {
		return Entry{Count: 1, ResetAt: now.Add(p.Window)}, true
	}
	if e.Count >= p.Limit {
		return e, false
	}
	e.Count++
	return e, true
}

type Limiter struct {
	name   string
	store  Store
	policy Policy
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New returns a limiter whose keys are namespaced by name so several limiters
// can share one store.
func New(name string, store Store, policy Policy, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("ratelimit %s: store is required", name)
	}
	if policy.Limit <= 0 || policy.Window <= 0 {
		return nil, fmt.Errorf("ratelimit %s: invalid policy %d/%s", name, policy.Limit, policy.Window)
	}
	l := &Limiter{name: name, store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Name() string {
	return l.name
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.store.Take(ctx, l.name+":"+key, l.now(), l.policy)
	if err != nil {
		return false, fmt.Errorf("ratelimit %s: %w", l.name, err)
	}
	return ok, nil
}

// Sweep drops every expired entry in the underlying store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}

// RunSweeper calls Sweep every interval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) error {
	logger := zerolog.Ctx(ctx).With().Str("limiter", l.name).Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := l.Sweep(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int("removed", n).Msg("swept expired rate limit entries")
			}
		}
	}
}
