package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, and Query implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
// The driver error is returned unwrapped so its message reaches the
// error translator exactly as the engine rendered it.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*core.Rows, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	return &core.Rows{Rows: rows}, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// ParseQualifiedName splits a table reference into schema and name.
// Uses defaultSchema if the reference is unqualified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// CountRows returns the number of rows in table, or 0 if counting fails.
func (b *BaseSQLAdapter) CountRows(ctx context.Context, quotedTable string) int64 {
	var n int64
	//nolint:gosec // Table names come from metadata lookups
	if err := b.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quotedTable).Scan(&n); err != nil {
		return 0
	}
	return n
}

// InformationSchemaMetadata reads column metadata for table from
// information_schema.columns. Unqualified names resolve against
// defaultSchema. primaryKeys selects the mysql-only column_key column.
func (b *BaseSQLAdapter) InformationSchemaMetadata(
	ctx context.Context,
	table, defaultSchema string,
	quote func(string) string,
	placeholder func(int) string,
	primaryKeys bool,
) (*core.TableMetadata, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema, name := ParseQualifiedName(table, defaultSchema)

	cols := "column_name, data_type, is_nullable, ordinal_position"
	if primaryKeys {
		cols += ", column_key"
	}
	//nolint:gosec // only placeholders are interpolated
	query := fmt.Sprintf(`SELECT %s FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position`, cols, placeholder(1), placeholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable, key string
		dest := []any{&col.Name, &col.Type, &nullable, &col.Position}
		if primaryKeys {
			dest = append(dest, &key)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.PrimaryKey = key == "PRI"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:   schema,
		Name:     name,
		Columns:  columns,
		RowCount: b.CountRows(ctx, quote(schema)+"."+quote(name)),
	}, nil
}

// TextTableLoader describes how to create and fill an all-TEXT table
// from a CSV file for engines without a native CSV reader.
type TextTableLoader struct {
	// Quote quotes an identifier for the target dialect.
	Quote func(name string) string

	// Placeholder returns the bind placeholder for the n-th (1-based) argument.
	Placeholder func(n int) string

	// BatchSize is the number of rows per INSERT statement.
	BatchSize int
}

// LoadCSVAsText drops tableName, recreates it with one TEXT column per CSV
// header field and inserts every record inside a single transaction.
func (b *BaseSQLAdapter) LoadCSVAsText(ctx context.Context, tableName, filePath string, l TextTableLoader) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if l.BatchSize <= 0 {
		l.BatchSize = 200
	}

	f, err := os.Open(filePath) //nolint:gosec // path is produced by upload storage
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers = NormalizeHeaders(headers)

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	table := l.Quote(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}

	colDefs := make([]string, len(headers))
	colNames := make([]string, len(headers))
	for i, h := range headers {
		colNames[i] = l.Quote(h)
		colDefs[i] = colNames[i] + " TEXT"
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(colDefs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insertPrefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(colNames, ", "))
	batch := make([][]string, 0, l.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		var sb strings.Builder
		sb.WriteString(insertPrefix)
		args := make([]any, 0, len(batch)*len(headers))
		n := 1
		for i, rec := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(")
			for j := range headers {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(l.Placeholder(n))
				n++
				if j < len(rec) && rec[j] != "" {
					args = append(args, rec[j])
				} else {
					args = append(args, nil)
				}
			}
			sb.WriteString(")")
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		batch = append(batch, rec)
		if len(batch) == l.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	return tx.Commit()
}

// NormalizeHeaders trims header names and fills in blanks and duplicates
// so every column has a unique, non-empty name.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

// QuoteDouble quotes an identifier with ANSI double quotes.
func QuoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteBacktick quotes an identifier with MySQL backticks.
func QuoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuestionPlaceholder returns "?" for every argument.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder returns "$n".
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }
