package mysql

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   adapter.Config
		contains []string
	}{
		{
			name: "explicit host",
			config: adapter.Config{
				Host:     "db.example.com",
				Port:     3307,
				Database: "playground",
				Username: "student",
				Password: "secret",
			},
			contains: []string{"student:secret@tcp(db.example.com:3307)/playground", "parseTime=true"},
		},
		{
			name:     "defaults",
			config:   adapter.Config{Database: "playground"},
			contains: []string{"tcp(localhost:3306)/playground"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildDSN(tt.config)
			for _, c := range tt.contains {
				assert.Contains(t, dsn, c)
			}
		})
	}
}

func TestIntOption(t *testing.T) {
	opts := map[string]string{"a": "7", "b": "x", "c": "-1"}
	assert.Equal(t, 7, intOption(opts, "a", 1))
	assert.Equal(t, 1, intOption(opts, "b", 1))
	assert.Equal(t, 1, intOption(opts, "c", 1))
	assert.Equal(t, 3, intOption(nil, "a", 3))
}

func TestAdapter_LoadCSVUsesBackticks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emp.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,department\nRavi,IT\n"), 0o600))

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS `user_1234abcd`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE `user_1234abcd`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `user_1234abcd`").WithArgs("Ravi", "IT").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adp := New(nil)
	adp.DB = db
	require.NoError(t, adp.LoadCSV(context.Background(), "user_1234abcd", path))
	assert.NoError(t, mock.ExpectationsWereMet())
}
