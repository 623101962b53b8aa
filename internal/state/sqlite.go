package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/sqlplay/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the store at path and applies migrations.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateUpload registers an uploaded dataset, replacing any previous
// record for the same table name.
func (s *SQLiteStore) CreateUpload(ctx context.Context, u *core.Upload) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cols, err := json.Marshal(u.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, table_name, original_name, location, columns, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
			id = excluded.id,
			original_name = excluded.original_name,
			location = excluded.location,
			columns = excluded.columns,
			row_count = excluded.row_count,
			created_at = excluded.created_at`,
		u.ID, u.TableName, u.OriginalName, u.Location, string(cols), u.RowCount, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

// GetUpload retrieves an upload by table name.
func (s *SQLiteStore) GetUpload(ctx context.Context, tableName string) (*core.Upload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, table_name, original_name, location, columns, row_count, created_at
		FROM uploads WHERE table_name = ?`, tableName)

	u, err := scanUpload(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload %s: %w", tableName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}
	return u, nil
}

// ListUploads returns all uploads, oldest first.
func (s *SQLiteStore) ListUploads(ctx context.Context) ([]core.Upload, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, original_name, location, columns, row_count, created_at
		FROM uploads ORDER BY created_at, table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var uploads []core.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		uploads = append(uploads, *u)
	}
	return uploads, rows.Err()
}

// DeleteUpload removes an upload record.
func (s *SQLiteStore) DeleteUpload(ctx context.Context, tableName string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE table_name = ?`, tableName)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("upload %s: %w", tableName, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(sc scanner) (*core.Upload, error) {
	var (
		u    core.Upload
		cols string
	)
	if err := sc.Scan(&u.ID, &u.TableName, &u.OriginalName, &u.Location, &cols, &u.RowCount, &u.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cols), &u.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns: %w", err)
	}
	return &u, nil
}
