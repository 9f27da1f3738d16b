package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "career.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteDB_Contract(t *testing.T) {
	testStoreContract(t, openTestSQLite(t))
}

func TestSQLiteDB_EnsureSchemaIsIdempotent(t *testing.T) {
	store := openTestSQLite(t)

	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestSQLiteDB_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "career.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}
