package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	blob, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, blob)

	require.NoError(t, store.Save(ctx, []byte(`[1]`)))
	require.NoError(t, store.Save(ctx, []byte(`[2]`)))
	blob, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(blob))

	require.NoError(t, store.Clear(ctx))
	blob, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, blob)
	require.NoError(t, store.Clear(ctx), "clearing twice is fine")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(nil))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.json")
	store := NewFileStore(path)
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), []byte(`[]`)))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), []byte(`[3]`)))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	blob, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(blob))
}
