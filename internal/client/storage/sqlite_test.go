package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupKV(t *testing.T) *SQLiteKV {
	t.Helper()
	db, err := sql.Open("sqlite", "file:storage_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db))
	_, err = db.Exec(`DELETE FROM kv`)
	require.NoError(t, err)
	return NewSQLiteKV(db)
}

func TestSQLiteKV_GetMissingReturnsNil(t *testing.T) {
	kv := setupKV(t)
	v, err := kv.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteKV_SetGetOverwrite(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "authState", []byte(`{"v":1}`)))
	v, err := kv.Get(ctx, "authState")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":1}`), v)

	require.NoError(t, kv.Set(ctx, "authState", []byte(`{"v":2}`)))
	v, err = kv.Get(ctx, "authState")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":2}`), v)
}

func TestSQLiteKV_RemoveIsIdempotent(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	require.NoError(t, kv.Remove(ctx, "k"))
	require.NoError(t, kv.Remove(ctx, "k"))

	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSQLiteKV_RemovePrefix(t *testing.T) {
	kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "cred_check_100", []byte("a")))
	require.NoError(t, kv.Set(ctx, "cred_check_200", []byte("b")))
	require.NoError(t, kv.Set(ctx, "authState", []byte("c")))

	require.NoError(t, kv.RemovePrefix(ctx, "cred_check_"))

	v, err := kv.Get(ctx, "cred_check_100")
	require.NoError(t, err)
	require.Nil(t, v)
	v, err = kv.Get(ctx, "cred_check_200")
	require.NoError(t, err)
	require.Nil(t, v)
	v, err = kv.Get(ctx, "authState")
	require.NoError(t, err)
	require.Equal(t, []byte("c"), v)
}

func TestMemoryKV_MirrorsSQLiteContract(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	v, err := kv.Get(ctx, "absent")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, kv.Set(ctx, "cred_check_1", []byte("x")))
	require.NoError(t, kv.Set(ctx, "other", []byte("y")))
	require.NoError(t, kv.RemovePrefix(ctx, "cred_check_"))
	require.Equal(t, 1, kv.Len())

	require.NoError(t, kv.Remove(ctx, "other"))
	require.NoError(t, kv.Remove(ctx, "other"))
	require.Equal(t, 0, kv.Len())
}
