// Package storagetest holds the behaviour every storage.KV must satisfy.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/storage"
)

// Run exercises kv against the contract. newKV must return an empty store.
func Run(t *testing.T, newKV func(t *testing.T) storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		kv := newKV(t)
		v, ok, err := kv.Get(ctx, "ledger-2024-05-01")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(ctx, "ledger-2024-05-01", `[{"id":1}]`))
		v, ok, err := kv.Get(ctx, "ledger-2024-05-01")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":1}]`, v)
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(ctx, "k", "one"))
		require.NoError(t, kv.Set(ctx, "k", "two"))
		v, _, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", v)

		keys, err := kv.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"k"}, keys)
	})

	t.Run("keys lists everything", func(t *testing.T) {
		kv := newKV(t)
		for _, k := range []string{"ledger-2024-05-02", "theme", "ledger-2024-04-30"} {
			require.NoError(t, kv.Set(ctx, k, "[]"))
		}
		keys, err := kv.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"ledger-2024-05-02", "theme", "ledger-2024-04-30"}, keys)
	})

	t.Run("empty value is kept", func(t *testing.T) {
		kv := newKV(t)
		require.NoError(t, kv.Set(ctx, "k", ""))
		v, ok, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})
}
