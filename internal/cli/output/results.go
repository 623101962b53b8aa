package output

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Rows renders a query result. Values are looked up by column name.
func (r *Renderer) Rows(columns []string, rows []map[string]any, truncated bool) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if rows == nil {
			rows = []map[string]any{}
		}
		return r.JSON(rows)
	}
	if mode == ModeCSV {
		records := make([][]string, len(rows))
		for i, row := range rows {
			records[i] = make([]string, len(columns))
			for j, col := range columns {
				records[i][j] = FormatValue(row[col], true)
			}
		}
		return r.writeCSV(columns, records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rows {
		out := make(table.Row, len(columns))
		for i, col := range columns {
			out[i] = FormatValue(row[col], false)
		}
		t.AppendRow(out)
	}

	if mode == ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}

	summary := fmt.Sprintf("(%d rows)", len(rows))
	if len(rows) == 1 {
		summary = "(1 row)"
	}
	if truncated {
		summary += " result truncated"
	}
	r.Muted(summary)
	return nil
}

// FormatValue renders a cell. NULL is shown as "NULL" except in CSV,
// where it is an empty field.
func FormatValue(v any, forCSV bool) string {
	if v == nil {
		if forCSV {
			return ""
		}
		return "NULL"
	}
	return fmt.Sprint(v)
}

// Steps renders a query explanation.
func (r *Renderer) Steps(steps core.Steps, source core.Source) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(struct {
			Steps  core.Steps  `json:"steps"`
			Method core.Source `json:"method"`
		}{steps, source})
	}

	r.Header(1, "How this query works")
	for i, step := range steps {
		r.Printf("%d. %s\n", i+1, step)
	}
	r.Muted("source: " + string(source))
	return nil
}

// Explanation renders a translated error. raw is the original message and
// may be empty.
func (r *Renderer) Explanation(exp core.ErrorExplanation, source core.Source, raw string) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(struct {
			Explanation core.ErrorExplanation `json:"error_explanation"`
			RawError    string                `json:"raw_error,omitempty"`
			Source      core.Source           `json:"source"`
		}{exp, raw, source})
	}

	title := "Query error"
	if exp.Category != "" {
		title = CategoryTitle(exp.Category)
	}
	r.Header(1, title)
	if raw != "" {
		r.Println(r.styles.Error.Render(raw))
	}
	r.section("What it means", exp.Meaning)
	r.section("Why it happened", exp.Reason)
	r.section("How to fix it", exp.Fix)
	r.Muted("source: " + string(source))
	return nil
}

func (r *Renderer) section(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	r.Println("")
	r.Header(2, title)
	for _, line := range lines {
		r.Println("- " + line)
	}
}

// CategoryTitle turns UNKNOWN_IDENTIFIER into "Unknown Identifier".
func CategoryTitle(c core.ErrorCategory) string {
	words := strings.ReplaceAll(strings.ToLower(string(c)), "_", " ")
	return cases.Title(language.English).String(words)
}

// Datasets renders the catalog.
func (r *Renderer) Datasets(list []core.Dataset) error {
	mode := r.EffectiveMode()
	if mode == ModeJSON {
		if list == nil {
			list = []core.Dataset{}
		}
		return r.JSON(list)
	}

	if mode == ModeCSV {
		records := make([][]string, len(list))
		for i, ds := range list {
			records[i] = []string{ds.ID, ds.Name, ds.TableName, string(ds.Origin),
				strconv.FormatInt(ds.RowCount, 10), strings.Join(ds.Columns, ", ")}
		}
		return r.writeCSV([]string{"ID", "Name", "Table", "Origin", "Rows", "Columns"}, records)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Table", "Origin", "Rows", "Columns"})
	for _, ds := range list {
		t.AppendRow(table.Row{ds.ID, ds.Name, ds.TableName, ds.Origin, ds.RowCount, strings.Join(ds.Columns, ", ")})
	}

	if mode == ModeMarkdown {
		t.RenderMarkdown()
	} else {
		t.Render()
	}
	return nil
}

// writeCSV writes an RFC 4180 header and records to the output.
func (r *Renderer) writeCSV(header []string, records [][]string) error {
	w := csv.NewWriter(r.out)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
