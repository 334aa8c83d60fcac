// Package ratelimit throttles outbound classification requests to a fixed
// number per rolling window.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

const (
	// DefaultPerMinute is the request budget per window.
	DefaultPerMinute = 20
	// Window is the length of the budget window.
	Window = time.Minute
)

// Clock abstracts time so tests can observe sleeps without waiting.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Limiter allows at most N calls to Wait per Window measured from the most
// recent call. It is not safe for concurrent use; classification is
// sequential.
type Limiter struct {
	limit  int
	window time.Duration
	clock  Clock
	logger *slog.Logger

	count int
	last  time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects a clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// WithLogger sets the logger used to report waits.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Limiter) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New returns a Limiter allowing perMinute calls per Window. A
// non-positive perMinute disables limiting.
func New(perMinute int, opts ...Option) *Limiter {
	l := &Limiter{
		limit:  perMinute,
		window: Window,
		clock:  realClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until another request is permitted, then records it.
//
// When fewer than Window has elapsed since the previous call and the budget
// is spent, Wait sleeps for the rest of the window and resets the count.
// When a full Window has elapsed the count resets without sleeping.
// A first call never sleeps.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limit <= 0 {
		return nil
	}

	if !l.last.IsZero() {
		elapsed := l.clock.Now().Sub(l.last)
		switch {
		case elapsed < l.window && l.count >= l.limit:
			wait := l.window - elapsed
			l.logger.Info("rate limiting: waiting", "wait", wait.Round(10*time.Millisecond).String())
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return err
			}
			l.count = 0
		case elapsed >= l.window:
			l.count = 0
		}
	}

	l.count++
	l.last = l.clock.Now()
	return nil
}

// Count returns the number of calls recorded in the current window.
func (l *Limiter) Count() int { return l.count }
