// Package explainer produces deterministic, plain-language steps for a
// query by looking for well-known clause keywords.
//
// It is not a parser: keywords inside string literals or comments are
// picked up like any other text.
package explainer

import (
	"strings"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Marker maps a clause keyword to the sentence that explains it.
type Marker struct {
	Keyword  string
	Sentence string
}

// Markers lists the clause markers in the fixed priority order their
// sentences are emitted, independent of where the keywords appear in the
// text. ORDER BY deliberately precedes GROUP BY.
var Markers = []Marker{
	{Keyword: "SELECT", Sentence: "SELECT chooses which columns you want to see in the result."},
	{Keyword: "FROM", Sentence: "FROM tells the database which table to read the data from."},
	{Keyword: "WHERE", Sentence: "WHERE keeps only the rows that match your condition and skips the rest."},
	{Keyword: "ORDER BY", Sentence: "ORDER BY sorts the result rows by the column you picked."},
	{Keyword: "GROUP BY", Sentence: "GROUP BY puts rows with the same value together so you can count or sum each group."},
	{Keyword: "LIMIT", Sentence: "LIMIT shows only the first few rows of the result."},
}

// Fallback is returned when no clause marker is recognized.
const Fallback = "This query could not be broken into familiar steps. Try starting with SELECT ... FROM ..."

// Explain returns one sentence per clause marker found in query, in
// Markers order. When nothing matches it returns the single Fallback step.
func Explain(query string) core.Steps {
	upper := strings.ToUpper(query)

	var steps core.Steps
	for _, m := range Markers {
		if strings.Contains(upper, m.Keyword) {
			steps = append(steps, m.Sentence)
		}
	}

	if len(steps) == 0 {
		return core.Steps{Fallback}
	}
	return steps
}
