package ratelimit

import (
	"context"
	"time"
)

// Store counts hits for key in the fixed window containing now.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (count int64, resetAt time.Time, err error)
}

// windowStart aligns now to the window grid so every store agrees on
// boundaries.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left in the current window, rounded up to a second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return ((d + time.Second - 1) / time.Second) * time.Second
}

// Limiter applies a fixed-window quota of Max requests per Window.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(store Store, max int, window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	if max <= 0 {
		max = 100
	}
	l := &Limiter{store: store, max: max, window: window, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Limiter) Now() time.Time { return l.now() }

// Allow records a hit for key. On store error the result allows the request.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	count, resetAt, err := l.store.Hit(ctx, key, now, l.window)
	if err != nil {
		return Result{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: windowStart(now, l.window).Add(l.window)}, err
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
