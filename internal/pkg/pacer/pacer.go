// Package pacer enforces a minimum wall-clock interval between calls that
// share a key. The outreach providers meter API usage by spacing, not by
// concurrency, so one Pacer instance is shared process-wide and keyed by
// provider (Reply.io uses separate keys for its list and stats tiers).
package pacer

import (
	"context"
	"sync"
	"time"
)

// Pacer hands out call slots so that two grants for the same key are never
// closer together than the requested spacing. Waiters that give up (context
// canceled) do not consume a slot.
type Pacer struct {
	mu   sync.Mutex
	next map[string]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	// OnWait, when set, is called with the time a grant spent waiting.
	// Used to feed the provider wait metrics.
	OnWait func(key string, waited time.Duration)
}

// New creates a Pacer using the real clock.
func New() *Pacer {
	return &Pacer{
		next:  make(map[string]time.Time),
		now:   time.Now,
		sleep: sleepContext,
	}
}

// NewWithClock creates a Pacer with an injected clock and sleeper. Tests use
// this to drive time deterministically.
func NewWithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Pacer {
	return &Pacer{
		next:  make(map[string]time.Time),
		now:   now,
		sleep: sleep,
	}
}

// Wait blocks until the key's slot opens, then claims it for `spacing`.
// Returns the context's error if it is done first; the slot stays unclaimed
// in that case.
func (p *Pacer) Wait(ctx context.Context, key string, spacing time.Duration) error {
	start := p.now()
	for {
		p.mu.Lock()
		now := p.now()
		next, ok := p.next[key]
		if !ok || !now.Before(next) {
			p.next[key] = now.Add(spacing)
			p.mu.Unlock()
			if p.OnWait != nil {
				p.OnWait(key, now.Sub(start))
			}
			return nil
		}
		wait := next.Sub(now)
		p.mu.Unlock()

		if err := p.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Bind returns a func(ctx) error that waits on a fixed key and spacing.
// Provider clients hand it to their retry client as the pace hook.
func (p *Pacer) Bind(key string, spacing time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return p.Wait(ctx, key, spacing)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
