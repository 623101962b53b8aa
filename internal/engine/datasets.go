package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/sqlplay/internal/catalog"
	"github.com/leapstack-labs/sqlplay/internal/storage"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// UploadResult is returned after a CSV has been loaded.
type UploadResult struct {
	Message   string   `json:"message"`
	TableName string   `json:"table_name"`
	Columns   []string `json:"columns"`
	RowCount  int64    `json:"row_count"`
}

// PreviewResult holds the first rows of a dataset.
type PreviewResult struct {
	Dataset core.Dataset     `json:"dataset"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Datasets lists the catalog.
func (e *Engine) Datasets() []core.Dataset {
	return e.catalog.List()
}

// SampleNames lists the built-in table names.
func (e *Engine) SampleNames() []string {
	return e.catalog.SampleNames()
}

// Dataset looks up a dataset by id.
func (e *Engine) Dataset(id string) (core.Dataset, error) {
	return e.catalog.Get(id)
}

// Preview returns up to limit rows of a catalog dataset.
func (e *Engine) Preview(ctx context.Context, id string, limit int) (*PreviewResult, error) {
	ds, err := e.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	limit = min(limit, MaxPreviewRows)

	//nolint:gosec // table names come from the catalog and match tableNamePattern
	rs, err := e.execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", ds.TableName, limit), limit)
	if err != nil {
		return nil, &QueryError{Message: e.rawMessage(err)}
	}
	return &PreviewResult{Dataset: ds, Columns: rs.columns, Rows: rs.objects()}, nil
}

// Upload stores a CSV file, loads it into a fresh user_<id> table and
// registers it in the catalog.
func (e *Engine) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, invalidInput("only CSV files allowed")
	}
	if e.files == nil {
		return nil, fmt.Errorf("upload storage not configured")
	}

	id := uuid.New().String()
	tableName := "user_" + id[:8]
	if !tableNamePattern.MatchString(tableName) {
		return nil, invalidInput("invalid table name %q", tableName)
	}

	obj, err := e.files.Put(ctx, id+".csv", r)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := e.db.LoadCSV(ctx, tableName, obj.Path); err != nil {
		e.discardUpload(ctx, obj, "")
		return nil, invalidInput("could not load %s: %v", filename, err)
	}
	meta, err := e.db.GetTableMetadata(ctx, tableName)
	if err != nil {
		e.discardUpload(ctx, obj, tableName)
		return nil, fmt.Errorf("failed to read uploaded table: %w", err)
	}

	ds, err := e.catalog.Register(ctx, &core.Upload{
		ID:           id,
		TableName:    tableName,
		OriginalName: filepath.Base(filename),
		Location:     obj.Location,
		Columns:      meta.ColumnNames(),
		RowCount:     meta.RowCount,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		e.discardUpload(ctx, obj, tableName)
		return nil, fmt.Errorf("failed to register upload: %w", err)
	}

	e.logger.Info("dataset uploaded",
		slog.String("table", tableName),
		slog.String("file", filename),
		slog.Int64("rows", meta.RowCount))
	if e.onUpload != nil {
		e.onUpload(ds)
	}

	return &UploadResult{
		Message:   "Dataset uploaded successfully",
		TableName: tableName,
		Columns:   ds.Columns,
		RowCount:  ds.RowCount,
	}, nil
}

// discardUpload removes what a failed upload left behind. Cleanup errors
// are logged; the caller reports the original failure.
func (e *Engine) discardUpload(ctx context.Context, obj storage.Object, tableName string) {
	if tableName != "" {
		//nolint:gosec // tableName matches tableNamePattern
		if err := e.db.Exec(ctx, "DROP TABLE IF EXISTS "+tableName); err != nil {
			e.logger.Warn("failed to drop table of failed upload",
				slog.String("table", tableName), slog.String("error", err.Error()))
		}
	}
	if err := e.files.Delete(ctx, obj.Location); err != nil {
		e.logger.Warn("failed to delete file of failed upload",
			slog.String("location", obj.Location), slog.String("error", err.Error()))
	}
}

// IsUnknownDataset reports whether err means the dataset id is not known.
func IsUnknownDataset(err error) bool {
	return errors.Is(err, catalog.ErrUnknownDataset)
}
