package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/pkg/storage"
)

func TestLocalDisk_PutGetDelete(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir())

	require.NoError(t, d.Put("kv/cartItems.json", []byte(`[]`)))
	assert.True(t, d.Exists("kv/cartItems.json"))

	data, err := d.Get("kv/cartItems.json")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, d.Put("kv/cartItems.json", []byte(`[{"id":"CC001-1 kg"}]`)))
	data, err = d.Get("kv/cartItems.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "CC001-1 kg")

	files, err := d.Files("kv")
	require.NoError(t, err)
	assert.Equal(t, []string{"kv/cartItems.json"}, files)

	require.NoError(t, d.Delete("kv/cartItems.json"))
	require.NoError(t, d.Delete("kv/cartItems.json"), "deleting a missing file is not an error")
	assert.False(t, d.Exists("kv/cartItems.json"))
}

func TestLocalDisk_GetMissing(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir())

	_, err := d.Get("nope.json")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	files, err := d.Files("empty")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestManager_Use(t *testing.T) {
	m := storage.NewManager()

	_, err := m.Use("local")
	require.NoError(t, err)

	_, err = m.Use("ftp")
	assert.Error(t, err)

	m.Register("tmp", storage.NewLocalDisk(t.TempDir()))
	_, err = m.Use("tmp")
	assert.NoError(t, err)
}
