// Package ratelimit limits inbound chat events per user.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter allows at most perMinute events per user in a fixed one-minute window.
type Limiter struct {
	mu        sync.Mutex
	users     map[string]*userWindow
	perMinute int
	now       func() time.Time
	rejected  int64
}

type userWindow struct {
	start  time.Time
	events int
}

// Config holds rate limiter configuration
type Config struct {
	PerMinute int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{PerMinute: 30}
}

func NewLimiter(config Config) *Limiter {
	if config.PerMinute <= 0 {
		config = DefaultConfig()
	}
	return &Limiter{
		users:     make(map[string]*userWindow),
		perMinute: config.PerMinute,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records one event for userID and reports whether it is within the limit.
func (l *Limiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.users[userID]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.users[userID] = &userWindow{start: now, events: 1}
		return true
	}
	w.events++
	if w.events > l.perMinute {
		atomic.AddInt64(&l.rejected, 1)
		return false
	}
	return true
}

// Run drops idle user windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-ctx.Done():
			return nil
		}
	}
}

// cleanup removes windows idle for more than 10 minutes.
func (l *Limiter) cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-10 * time.Minute)
	removed := 0
	for id, w := range l.users {
		if w.start.Before(cutoff) {
			delete(l.users, id)
			removed++
		}
	}
	return removed
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	Rejected    int64
	ActiveUsers int64
}

func (l *Limiter) Metrics() Metrics {
	l.mu.Lock()
	active := int64(len(l.users))
	l.mu.Unlock()
	return Metrics{
		Rejected:    atomic.LoadInt64(&l.rejected),
		ActiveUsers: active,
	}
}
