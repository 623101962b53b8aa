package playground

import (
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// EditorSignals is the editor state sent by the browser.
type EditorSignals struct {
	SQL string `json:"sql"`
}

// ResultSignals replaces the result panel. Message is set when the query
// was refused before it reached the database.
type ResultSignals struct {
	Columns     []string               `json:"columns"`
	Rows        []map[string]any       `json:"rows"`
	RowCount    int                    `json:"rowCount"`
	Truncated   bool                   `json:"truncated"`
	Explanation *core.ErrorExplanation `json:"explanation"`
	RawError    string                 `json:"rawError"`
	Source      core.Source            `json:"source"`
	Message     string                 `json:"message"`
}

// ExplainSignals replaces the explanation panel.
type ExplainSignals struct {
	Steps   core.Steps  `json:"steps"`
	Method  core.Source `json:"method"`
	Message string      `json:"message"`
}

func emptyResult(message string) ResultSignals {
	return ResultSignals{
		Columns: []string{},
		Rows:    []map[string]any{},
		Message: message,
	}
}
