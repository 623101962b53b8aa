// Package translator turns raw database error messages into a
// beginner-friendly meaning/reason/fix explanation.
package translator

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// identifierPlaceholder is substituted into templates with the offending
// table or column name.
const identifierPlaceholder = "{identifier}"

// unknownIdentifier is used when the name cannot be extracted.
const unknownIdentifier = "it"

var identifierPattern = regexp.MustCompile(`(?i)no such (?:table|column):\s*([^\s\[\]()'",;]+)`)

// Rule classifies a lowercased error message into a category.
type Rule struct {
	Category core.ErrorCategory
	Patterns []string
}

// Rules are checked in order; the first rule with a matching pattern wins.
var Rules = []Rule{
	{Category: core.CategoryUnknownIdentifier, Patterns: []string{"no such table", "no such column"}},
	{Category: core.CategorySyntaxError, Patterns: []string{"syntax error", "near"}},
	{Category: core.CategoryAmbiguousColumn, Patterns: []string{"ambiguous"}},
	{Category: core.CategoryForbiddenOperation, Patterns: []string{"not allowed", "forbidden"}},
}

// Template holds the bullet points for one category.
type Template struct {
	Meaning []string
	Reason  []string
	Fix     []string
}

// Templates maps every category to its explanation.
var Templates = map[core.ErrorCategory]Template{
	core.CategoryUnknownIdentifier: {
		Meaning: []string{"The database could not find something your query mentions."},
		Reason:  []string{"There is no table or column called " + identifierPlaceholder + " in this dataset."},
		Fix: []string{
			"Check the spelling of " + identifierPlaceholder + ".",
			"Look at the dataset's column list to see which names exist.",
		},
	},
	core.CategorySyntaxError: {
		Meaning: []string{"The database could not understand how the query is written."},
		Reason:  []string{"A keyword, comma or bracket is missing, misspelled or in the wrong place."},
		Fix: []string{
			"Look closely at the part of the query the error points to.",
			"Make sure the clauses follow the order SELECT, FROM, WHERE, GROUP BY, ORDER BY, LIMIT.",
		},
	},
	core.CategoryAmbiguousColumn: {
		Meaning: []string{"A column name in your query matches more than one table."},
		Reason:  []string{"When two tables share a column name the database does not know which one you mean."},
		Fix:     []string{"Put the table name in front of the column, for example students.name."},
	},
	core.CategoryForbiddenOperation: {
		Meaning: []string{"This kind of query is not allowed in the playground."},
		Reason:  []string{"The playground only lets you read data, not change or delete it."},
		Fix:     []string{"Rewrite the query as a SELECT that reads the data you need."},
	},
	core.CategoryGeneric: {
		Meaning: []string{"Something went wrong while running your query."},
		Reason:  []string{"The database reported a problem it could not describe in simpler terms."},
		Fix: []string{
			"Read the raw error message for hints.",
			"Try simplifying the query and adding parts back one at a time.",
		},
	},
}

// Classify returns the category for message and, for unknown identifiers,
// the extracted name (or "it" when extraction fails).
func Classify(message string) (core.ErrorCategory, string) {
	lower := strings.ToLower(message)
	for _, rule := range Rules {
		for _, p := range rule.Patterns {
			if !strings.Contains(lower, p) {
				continue
			}
			if rule.Category == core.CategoryUnknownIdentifier {
				return rule.Category, extractIdentifier(message)
			}
			return rule.Category, ""
		}
	}
	return core.CategoryGeneric, ""
}

// Translate classifies message and renders the matching template.
// The result never has an empty section.
func Translate(message string) core.ErrorExplanation {
	category, identifier := Classify(message)
	exp := render(category, identifier)
	if !exp.IsComplete() {
		return render(core.CategoryGeneric, "")
	}
	return exp
}

func render(category core.ErrorCategory, identifier string) core.ErrorExplanation {
	tmpl := Templates[category]
	return core.ErrorExplanation{
		Category: category,
		Meaning:  fill(tmpl.Meaning, identifier),
		Reason:   fill(tmpl.Reason, identifier),
		Fix:      fill(tmpl.Fix, identifier),
	}
}

func fill(lines []string, identifier string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(strings.ReplaceAll(l, identifierPlaceholder, identifier))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func extractIdentifier(message string) string {
	m := identifierPattern.FindStringSubmatch(message)
	if len(m) < 2 || m[1] == "" {
		return unknownIdentifier
	}
	return m[1]
}
