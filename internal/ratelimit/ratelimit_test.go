package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{PerMinute: 2}).WithClock(func() time.Time { return now })

	assert.True(t, l.Allow("1"))
	assert.True(t, l.Allow("1"))
	assert.False(t, l.Allow("1"))
	assert.True(t, l.Allow("2"), "limits are per user")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("1"), "window resets after a minute")

	m := l.Metrics()
	assert.Equal(t, int64(1), m.Rejected)
	assert.Equal(t, int64(2), m.ActiveUsers)
}

func TestLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{PerMinute: 5}).WithClock(func() time.Time { return now })
	l.Allow("1")
	now = now.Add(11 * time.Minute)
	l.Allow("2")

	assert.Equal(t, 1, l.cleanup())
	assert.Equal(t, int64(1), l.Metrics().ActiveUsers)
}

func TestNewLimiter_Defaults(t *testing.T) {
	l := NewLimiter(Config{})
	assert.Equal(t, DefaultConfig().PerMinute, l.perMinute)
}
