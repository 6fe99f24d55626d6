package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gagyebu/internal/storage"
	"gagyebu/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.KV {
		s, err := NewStore(filepath.Join(t.TempDir(), "ledger.json"))
		require.NoError(t, err)
		return s
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "ledger-2024-05-01", `[]`))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, "ledger-2024-05-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}

func TestCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path)
	assert.Error(t, err)
}

func TestEmptyFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := NewStore(path)
	require.NoError(t, err)
	keys, err := s.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestTwoStoresOnOneFileKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")

	server, err := NewStore(path)
	require.NoError(t, err)
	cli, err := NewStore(path)
	require.NoError(t, err)

	require.NoError(t, cli.Set(ctx, "ledger-2024-05-01", `[{"id":1}]`))

	v, ok, err := server.Get(ctx, "ledger-2024-05-01")
	require.NoError(t, err)
	assert.True(t, ok, "server should see the other instance's write")
	assert.Equal(t, `[{"id":1}]`, v)

	require.NoError(t, server.Set(ctx, "ledger-2024-05-02", `[{"id":2}]`))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	keys, err := reopened.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger-2024-05-01", "ledger-2024-05-02"}, keys)

	keys, err = cli.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger-2024-05-01", "ledger-2024-05-02"}, keys)
}
