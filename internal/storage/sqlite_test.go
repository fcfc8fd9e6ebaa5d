package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestKV creates a SQLite store in a temp directory.
func openTestKV(t *testing.T) (*SQLiteKV, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt.db")
	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv, path
}

func TestSQLiteKV_GetAbsentKey(t *testing.T) {
	kv, _ := openTestKV(t)

	_, err := kv.Get("base-receipt:state")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSQLiteKV_SetGet(t *testing.T) {
	kv, _ := openTestKV(t)

	require.NoError(t, kv.Set("base-receipt:state", `{"receipt":null}`))

	value, err := kv.Get("base-receipt:state")
	require.NoError(t, err)
	assert.Equal(t, `{"receipt":null}`, value)
}

func TestSQLiteKV_SetOverwrites(t *testing.T) {
	kv, _ := openTestKV(t)

	require.NoError(t, kv.Set("k", "first"))
	require.NoError(t, kv.Set("k", "second"))

	value, err := kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSQLiteKV_Delete(t *testing.T) {
	kv, _ := openTestKV(t)

	require.NoError(t, kv.Set("k", "v"))
	require.NoError(t, kv.Delete("k"))

	_, err := kv.Get("k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting an absent key is a no-op.
	assert.NoError(t, kv.Delete("k"))
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set("base-receipt:domain", "receipt.base.pi"))
	require.NoError(t, kv.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("base-receipt:domain")
	require.NoError(t, err)
	assert.Equal(t, "receipt.base.pi", value)
}
