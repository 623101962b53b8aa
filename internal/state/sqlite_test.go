package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/sqlplay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, store.Migrate(), "migrations must be re-runnable")
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	ctx := context.Background()

	assert.Error(t, store.Migrate())
	assert.Error(t, store.CreateUpload(ctx, &core.Upload{}))
	_, err := store.ListUploads(ctx)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_UploadLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	first := &core.Upload{
		ID:           "0a1b2c3d-0000-0000-0000-000000000000",
		TableName:    "user_0a1b2c3d",
		OriginalName: "marks.csv",
		Location:     "uploads/0a1b2c3d.csv",
		Columns:      []string{"name", "marks"},
		RowCount:     3,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	second := &core.Upload{
		ID:           "ffff0000-0000-0000-0000-000000000000",
		TableName:    "user_ffff0000",
		OriginalName: "cities.csv",
		Location:     "s3://bucket/ffff0000.csv",
		Columns:      []string{"city"},
		RowCount:     1,
		CreatedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateUpload(ctx, second))
	require.NoError(t, store.CreateUpload(ctx, first))

	got, err := store.GetUpload(ctx, "user_0a1b2c3d")
	require.NoError(t, err)
	assert.Equal(t, first.Columns, got.Columns)
	assert.Equal(t, first.RowCount, got.RowCount)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	list, err := store.ListUploads(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "user_0a1b2c3d", list[0].TableName)
	assert.Equal(t, "user_ffff0000", list[1].TableName)

	require.NoError(t, store.DeleteUpload(ctx, "user_ffff0000"))
	_, err = store.GetUpload(ctx, "user_ffff0000")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteUpload(ctx, "user_ffff0000"), ErrNotFound)
}

func TestSQLiteStore_CreateUploadReplacesSameTable(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.CreateUpload(ctx, &core.Upload{ID: "a", TableName: "user_aaaaaaaa", OriginalName: "v1.csv", Location: "x"}))
	require.NoError(t, store.CreateUpload(ctx, &core.Upload{ID: "b", TableName: "user_aaaaaaaa", OriginalName: "v2.csv", Location: "y", RowCount: 9}))

	list, err := store.ListUploads(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "v2.csv", list[0].OriginalName)
	assert.Equal(t, int64(9), list[0].RowCount)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store := NewSQLiteStore()
	require.NoError(t, store.Open(path))
	require.NoError(t, store.CreateUpload(ctx, &core.Upload{ID: "a", TableName: "user_aaaaaaaa", OriginalName: "a.csv", Location: "x"}))
	require.NoError(t, store.Close())

	reopened := NewSQLiteStore()
	require.NoError(t, reopened.Open(path))
	defer func() { _ = reopened.Close() }()

	list, err := reopened.ListUploads(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
