package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/log"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[bool](10, time.Minute).WithClock(func() time.Time { return now })
	c.Set("owner:1", true)
	c.Set("owner:2", false)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_GetOrLoad(t *testing.T) {
	c := NewLRUCache[bool](10, time.Minute)
	calls := 0
	load := func(context.Context) (bool, error) {
		calls++
		return true, nil
	}

	v, err := c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.True(t, v)
	_, err = c.GetOrLoad(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad(context.Background(), "bad", func(context.Context) (bool, error) {
		return false, errors.New("store down")
	})
	require.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestManager_Sweep(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[string](10, time.Second).WithClock(func() time.Time { return now })
	c.Set("x", "y")
	m := NewManager(log.New(log.DefaultConfig()))
	m.Register(c)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, m.Sweep())
}
