package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportResult is a rendered query result ready to be sent as a file.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string

	// Truncated is set when the result hit the max_rows cap.
	Truncated bool
}

// Export runs query and renders up to max_rows rows as CSV or JSON.
func (e *Engine) Export(ctx context.Context, query, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, invalidInput("unsupported export format %q (use csv or json)", format)
	}
	if err := e.check(query); err != nil {
		return nil, err
	}

	rs, err := e.execute(ctx, query, e.maxRows)
	if err != nil {
		return nil, &QueryError{Message: e.rawMessage(err)}
	}
	if rs.truncated {
		e.logger.Warn("export truncated", slog.Int("max_rows", e.maxRows))
	}

	if format == FormatJSON {
		data, err := json.Marshal(rs.objects())
		if err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return &ExportResult{Data: data, ContentType: "application/json", Filename: "export.json", Truncated: rs.truncated}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rs.columns); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	record := make([]string, len(rs.columns))
	for _, row := range rs.rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
			} else {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return &ExportResult{Data: buf.Bytes(), ContentType: "text/csv", Filename: "export.csv", Truncated: rs.truncated}, nil
}
