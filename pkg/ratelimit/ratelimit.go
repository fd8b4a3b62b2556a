// Package ratelimit spaces outbound catalog requests.
//
// A single [Limiter] is shared by every catalog call in the process. Callers
// serialize through [Limiter.Wait]; they do not otherwise coordinate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultCallsPerMinute is the request budget used when none is configured.
// Modrinth allows 300 requests per minute per IP; the default leaves headroom.
const DefaultCallsPerMinute = 280

// Limiter enforces a minimum spacing of 60/N seconds between permitted calls.
//
// The zero value is not usable; use [New]. A nil *Limiter never blocks,
// which is convenient for tests and offline tooling.
type Limiter struct {
	lim      *rate.Limiter
	interval time.Duration
}

// New creates a Limiter allowing callsPerMinute permitted calls per minute.
// Values <= 0 fall back to [DefaultCallsPerMinute].
func New(callsPerMinute int) *Limiter {
	if callsPerMinute <= 0 {
		callsPerMinute = DefaultCallsPerMinute
	}
	interval := time.Minute / time.Duration(callsPerMinute)
	return &Limiter{
		// A burst of one turns the token bucket into a strict spacing gate:
		// each permit is at least interval after the previous one.
		lim:      rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Interval returns the minimum spacing between permitted calls.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Wait blocks until the next call is permitted or ctx is done.
// The only error it returns is the context's.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.lim.Wait(ctx)
}
