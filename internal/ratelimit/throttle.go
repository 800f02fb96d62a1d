package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Throttle spaces outbound fetches to stay under the source site's abuse
// thresholds. Each Wait sleeps for Base plus a uniform jitter in [0, Jitter].
type Throttle struct {
	Base   time.Duration
	Jitter time.Duration
}

func New(base, jitter time.Duration) *Throttle {
	return &Throttle{Base: base, Jitter: jitter}
}

// Duration draws the delay for one fetch.
func (t *Throttle) Duration() time.Duration {
	d := t.Base
	if t.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(t.Jitter) + 1))
	}
	return d
}

// Wait blocks for one jittered delay or until the context is done.
func (t *Throttle) Wait(ctx context.Context) error {
	d := t.Duration()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
