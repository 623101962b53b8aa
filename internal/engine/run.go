package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// RunResult is the outcome of running a query. Exactly one of the row
// fields or the error fields is populated.
type RunResult struct {
	Columns   []string
	Rows      []map[string]any
	RowCount  int
	Truncated bool

	Error    *core.ErrorExplanation
	RawError string
	Source   core.Source
}

// Failed reports whether the engine rejected the query.
func (r *RunResult) Failed() bool { return r.Error != nil }

type runRows struct {
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated"`
}

type runFailure struct {
	Error    *core.ErrorExplanation `json:"error_explanation"`
	RawError string                 `json:"raw_error"`
	Source   core.Source            `json:"source"`
}

// MarshalJSON renders either the rows shape or the error shape.
func (r *RunResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(runFailure{Error: r.Error, RawError: r.RawError, Source: r.Source})
	}
	rows := r.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	cols := r.Columns
	if cols == nil {
		cols = []string{}
	}
	return json.Marshal(runRows{Columns: cols, Rows: rows, RowCount: r.RowCount, Truncated: r.Truncated})
}

// ExplainResult carries query explanation steps.
type ExplainResult struct {
	Steps  core.Steps  `json:"steps"`
	Source core.Source `json:"method"`
}

// resultSet is an ordered, fully read query result.
type resultSet struct {
	columns   []string
	rows      [][]any
	truncated bool
}

// check rejects empty and blocked queries.
func (e *Engine) check(query string) error {
	if strings.TrimSpace(query) == "" {
		return invalidInput("query must not be empty")
	}
	if v := e.guard.Check(query); !v.Allowed {
		e.logger.Info("query blocked", slog.String("keyword", v.BlockedKeyword))
		return &ForbiddenError{Keyword: v.BlockedKeyword}
	}
	return nil
}

// Run guards and executes query. Engine failures are returned inside the
// result with an explanation, not as an error.
func (e *Engine) Run(ctx context.Context, query string) (*RunResult, error) {
	if err := e.check(query); err != nil {
		return nil, err
	}

	start := time.Now()
	rs, err := e.execute(ctx, query, e.maxRows)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw := e.rawMessage(err)
		e.logger.Debug("query failed", slog.String("error", raw))
		explanation, source := e.tutor.TranslateError(ctx, raw)
		return &RunResult{Error: &explanation, RawError: raw, Source: source}, nil
	}

	e.logger.Debug("query executed",
		slog.Int("rows", len(rs.rows)),
		slog.Duration("duration", time.Since(start)))

	return &RunResult{
		Columns:   rs.columns,
		Rows:      rs.objects(),
		RowCount:  len(rs.rows),
		Truncated: rs.truncated,
	}, nil
}

// Explain describes query in plain language. Blocked queries are still
// explained; nothing is executed.
func (e *Engine) Explain(ctx context.Context, query string) (*ExplainResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidInput("query must not be empty")
	}
	steps, source := e.tutor.ExplainQuery(ctx, query)
	return &ExplainResult{Steps: steps, Source: source}, nil
}

// TranslateError explains a raw database error message.
func (e *Engine) TranslateError(ctx context.Context, message string) (core.ErrorExplanation, core.Source) {
	return e.tutor.TranslateError(ctx, message)
}

func (e *Engine) rawMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("query timed out after %s", e.queryTimeout)
	}
	return err.Error()
}

// execute runs query under the query timeout and reads at most limit rows.
// A limit of zero or less reads everything.
func (e *Engine) execute(ctx context.Context, query string, limit int) (*resultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	rs, err := e.read(ctx, query, limit)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		// Drivers report cancellation in their own words.
		err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return rs, err
}

func (e *Engine) read(ctx context.Context, query string, limit int) (*resultSet, error) {
	rows, err := e.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &resultSet{columns: cols, rows: [][]any{}}
	for rows.Next() {
		if limit > 0 && len(rs.rows) == limit {
			rs.truncated = true
			break
		}
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		rs.rows = append(rs.rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// normalize converts driver values into JSON-friendly ones.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

func (rs *resultSet) objects() []map[string]any {
	out := make([]map[string]any, len(rs.rows))
	for i, row := range rs.rows {
		m := make(map[string]any, len(rs.columns))
		for j, col := range rs.columns {
			m[col] = row[j]
		}
		out[i] = m
	}
	return out
}
