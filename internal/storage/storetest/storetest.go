// Package storetest holds the behaviour every ledger.Store must satisfy.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneytrack/internal/ledger"
)

// Run exercises the store contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Run("read missing", func(t *testing.T) {
		s := newStore(t)
		_, found, err := s.Read(context.Background(), "sessions/1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("write replaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Write(ctx, "budgets/1/daily", []byte(`{"amount":1,"extra":true}`)))
		require.NoError(t, s.Write(ctx, "budgets/1/daily", []byte(`{"amount":2}`)))

		got := readMap(t, s, "budgets/1/daily")
		assert.Equal(t, map[string]any{"amount": float64(2)}, got)
	})

	t.Run("patch merges and removes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Patch(ctx, "users/1", map[string]any{"name": "Ana", "age": 3}))
		require.NoError(t, s.Patch(ctx, "users/1", map[string]any{"last_activity": "now", "age": nil}))

		got := readMap(t, s, "users/1")
		assert.Equal(t, map[string]any{"name": "Ana", "last_activity": "now"}, got)
	})

	t.Run("append orders children", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		var ids []string
		for i := 0; i < 5; i++ {
			raw, _ := json.Marshal(map[string]int{"n": i})
			id, err := s.Append(ctx, "expenses/1", raw)
			require.NoError(t, err)
			require.NotEmpty(t, id)
			ids = append(ids, id)
		}
		_, err := s.Append(ctx, "expenses/2", []byte(`{"n":99}`))
		require.NoError(t, err)

		children, err := s.Children(ctx, "expenses/1")
		require.NoError(t, err)
		require.Len(t, children, 5)
		for i, c := range children {
			assert.Equal(t, ids[i], c.ID)
			var v map[string]int
			require.NoError(t, json.Unmarshal(c.Value, &v))
			assert.Equal(t, i, v["n"])
		}
	})

	t.Run("children are direct only", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Write(ctx, "users/1", []byte(`{}`)))
		require.NoError(t, s.Write(ctx, "users/2", []byte(`{}`)))
		require.NoError(t, s.Write(ctx, "users/2/nested", []byte(`{}`)))
		require.NoError(t, s.Write(ctx, "usersx/3", []byte(`{}`)))

		children, err := s.Children(ctx, "users")
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "1", children[0].ID)
		assert.Equal(t, "2", children[1].ID)
	})

	t.Run("delete removes subtree only", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Append(ctx, "expenses/1", []byte(`{}`))
		require.NoError(t, err)
		_, err = s.Append(ctx, "expenses/1", []byte(`{}`))
		require.NoError(t, err)
		_, err = s.Append(ctx, "expenses/10", []byte(`{}`))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "expenses/1"))

		children, err := s.Children(ctx, "expenses/1")
		require.NoError(t, err)
		assert.Empty(t, children)

		children, err = s.Children(ctx, "expenses/10")
		require.NoError(t, err)
		assert.Len(t, children, 1)
	})

	t.Run("delete subtree with multibyte segment", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Write(ctx, "budgets/ñandú/daily", []byte(`{"amount":1}`)))
		require.NoError(t, s.Write(ctx, "budgets/ñandú/weekly", []byte(`{"amount":2}`)))
		require.NoError(t, s.Write(ctx, "budgets/ñandúx/daily", []byte(`{"amount":3}`)))

		require.NoError(t, s.Delete(ctx, "budgets/ñandú"))

		children, err := s.Children(ctx, "budgets/ñandú")
		require.NoError(t, err)
		assert.Empty(t, children)

		_, found, err := s.Read(ctx, "budgets/ñandúx/daily")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete(context.Background(), "donations/404"))
	})
}

func readMap(t *testing.T, s ledger.Store, path string) map[string]any {
	t.Helper()
	raw, found, err := s.Read(context.Background(), path)
	require.NoError(t, err)
	require.True(t, found, "document %s missing", path)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
