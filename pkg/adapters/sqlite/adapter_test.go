package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sqlplay/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T) *Adapter {
	t.Helper()
	adp := New(nil)
	path := filepath.Join(t.TempDir(), "play.db")
	require.NoError(t, adp.Connect(context.Background(), core.AdapterConfig{Path: path}))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Metadata(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE students (name TEXT NOT NULL, score INTEGER)"))
	require.NoError(t, adp.Exec(ctx, "INSERT INTO students VALUES ('Amit', 85), ('Neha', 92)"))

	meta, err := adp.GetTableMetadata(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, []string{"name", "score"}, meta.ColumnNames())
	assert.False(t, meta.Columns[0].Nullable)
	assert.Equal(t, 2, meta.Columns[1].Position)
	assert.Equal(t, int64(2), meta.RowCount)

	_, err = adp.GetTableMetadata(ctx, "missing")
	assert.ErrorContains(t, err, "table missing not found")
}

func TestAdapter_QueryErrorText(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)

	_, err := adp.Query(ctx, "SELECT * FROM studnts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table: studnts")
}

func TestAdapter_LoadCSVReplacesTable(t *testing.T) {
	ctx := context.Background()
	adp := connect(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(first, []byte("name,score\nAmit,85\nNeha,92\nRahul,70\n"), 0o600))
	require.NoError(t, adp.LoadCSV(ctx, "user_00000001", first))

	meta, err := adp.GetTableMetadata(ctx, "user_00000001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.RowCount)
	assert.Equal(t, "TEXT", meta.Columns[0].Type)

	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(second, []byte("city\nPune\n"), 0o600))
	require.NoError(t, adp.LoadCSV(ctx, "user_00000001", second))

	meta, err = adp.GetTableMetadata(ctx, "user_00000001")
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, meta.ColumnNames())
	assert.Equal(t, int64(1), meta.RowCount)
}

func TestAdapter_InMemoryDefault(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, core.AdapterConfig{}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE t (x INTEGER)"))
	rows, err := adp.Query(ctx, "SELECT COUNT(*) FROM t")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	assert.True(t, rows.Next())
}
