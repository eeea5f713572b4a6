package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHandleStore(t *testing.T) {
	store := NewMemoryHandleStore(time.Hour, time.Hour)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Add("abc12345", "signed-grant", expires))

	assert.True(t, store.Exists("abc12345"))

	signed, storedExpiry, ok := store.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, "signed-grant", signed)
	assert.Equal(t, expires.Unix(), storedExpiry.Unix())

	store.Delete("abc12345")
	assert.False(t, store.Exists("abc12345"))
	_, _, ok = store.Get("abc12345")
	assert.False(t, ok)
}

func TestMemoryHandleStoreAddIsAtomic(t *testing.T) {
	store := NewMemoryHandleStore(time.Hour, time.Hour)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Add("abc12345", "first", expires))

	err := store.Add("abc12345", "second", expires)
	assert.ErrorIs(t, err, ErrHandleExists)

	signed, _, ok := store.Get("abc12345")
	require.True(t, ok)
	assert.Equal(t, "first", signed)
}

func TestMemoryHandleStoreEvictsExpiredOnRead(t *testing.T) {
	store := NewMemoryHandleStore(time.Hour, time.Hour)

	require.NoError(t, store.Add("abc12345", "signed-grant", time.Now().Add(20*time.Millisecond)))

	_, _, ok := store.Get("abc12345")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, _, ok = store.Get("abc12345")
	assert.False(t, ok)
	assert.False(t, store.Exists("abc12345"))
}
