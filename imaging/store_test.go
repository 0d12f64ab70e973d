package imaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWriteReadRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("jpeg bytes")
	path, err := store.Write(data)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".jpg"))
	assert.Contains(t, path, "/")

	got, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Remove(path))
	_, err = store.Read(path)
	assert.Error(t, err)
}

func TestStoreRemoveMissingFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove("uploads/never_existed.jpg"))
	assert.NoError(t, store.Remove(""))
}

func TestStoreGeneratesDistinctNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Write([]byte("a"))
	require.NoError(t, err)
	second, err := store.Write([]byte("a"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
