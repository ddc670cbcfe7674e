package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerLoadCorruptResets(t *testing.T) {
	store := NewMemoryStore([]byte("{garbage"))
	m := NewManager(store, WithLogger(quietLogger()))

	log := m.Load(context.Background())
	assert.Empty(t, log)
	assert.Nil(t, store.Blob(), "corrupt blob is removed")
}

func TestManagerLoadErrorIsSwallowed(t *testing.T) {
	store := NewMemoryStore(nil)
	store.LoadErr = errors.New("disk on fire")
	m := NewManager(store, WithLogger(quietLogger()))
	assert.Empty(t, m.Load(context.Background()))
}

func TestManagerDebounceCoalesces(t *testing.T) {
	store := NewMemoryStore(nil)
	m := NewManager(store, WithDebounce(20*time.Millisecond), WithLogger(quietLogger()))

	log := Log{}
	for _, id := range []string{"a", "b", "c"} {
		log = log.Prepend(entry(id))
		m.Persist(log)
	}
	assert.Equal(t, 0, store.Saves(), "nothing written inside the window")

	require.Eventually(t, func() bool { return store.Saves() == 1 }, time.Second, 5*time.Millisecond)
	got, err := Decode(store.Blob())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
}

func TestManagerWriteOnChange(t *testing.T) {
	store := NewMemoryStore(nil)
	m := NewManager(store, WithDebounce(0), WithLogger(quietLogger()))

	log := Log{}.Prepend(entry("a"))
	m.Persist(log)
	m.Persist(log)
	assert.Equal(t, 1, store.Saves())

	m.Persist(log.Prepend(entry("b")))
	assert.Equal(t, 2, store.Saves())
}

func TestManagerSkipsWriteOfAlreadyLoadedLog(t *testing.T) {
	blob, err := Encode(Log{}.Prepend(entry("a")))
	require.NoError(t, err)
	store := NewMemoryStore(blob)
	m := NewManager(store, WithDebounce(0), WithLogger(quietLogger()))

	log := m.Load(context.Background())
	m.Persist(log)
	assert.Equal(t, 0, store.Saves())
}

func TestManagerClearCancelsPendingWrite(t *testing.T) {
	store := NewMemoryStore(nil)
	m := NewManager(store, WithDebounce(time.Hour), WithLogger(quietLogger()))

	m.Persist(Log{}.Prepend(entry("a")))
	m.Clear(context.Background())
	m.Flush(context.Background())

	assert.Equal(t, 0, store.Saves())
	assert.Nil(t, store.Blob())
	assert.Empty(t, NewManager(store).Load(context.Background()), "a restart sees an empty log")
}

func TestManagerEmptyLogRemovesBlob(t *testing.T) {
	store := NewMemoryStore(nil)
	m := NewManager(store, WithDebounce(0), WithLogger(quietLogger()))

	m.Persist(Log{}.Prepend(entry("a")))
	require.NotNil(t, store.Blob())
	m.Persist(Log{})
	assert.Nil(t, store.Blob())
}

func TestManagerFlushWritesPending(t *testing.T) {
	store := NewMemoryStore(nil)
	m := NewManager(store, WithDebounce(time.Hour), WithLogger(quietLogger()))

	m.Persist(Log{}.Prepend(entry("a")))
	m.Flush(context.Background())
	assert.Equal(t, 1, store.Saves())
}

func TestManagerSaveErrorIsSwallowed(t *testing.T) {
	store := NewMemoryStore(nil)
	store.SaveErr = errors.New("read-only")
	m := NewManager(store, WithDebounce(0), WithLogger(quietLogger()))

	assert.NotPanics(t, func() { m.Persist(Log{}.Prepend(entry("a"))) })
	assert.Equal(t, 0, store.Saves())
}
