package translator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message        string
		wantCategory   core.ErrorCategory
		wantIdentifier string
	}{
		{"no such column: foo", core.CategoryUnknownIdentifier, "foo"},
		{"no such table: studnets", core.CategoryUnknownIdentifier, "studnets"},
		{"(sqlite3.OperationalError) no such table: emp\n[SQL: SELECT * FROM emp]", core.CategoryUnknownIdentifier, "emp"},
		{"SQL logic error: no such column: s.nmae (1)", core.CategoryUnknownIdentifier, "s.nmae"},
		{"No Such Table", core.CategoryUnknownIdentifier, "it"},
		{"syntax error near SELECT", core.CategorySyntaxError, ""},
		{`near "FORM": syntax error`, core.CategorySyntaxError, ""},
		{"ambiguous column name: id", core.CategoryAmbiguousColumn, ""},
		{"operation not allowed", core.CategoryForbiddenOperation, ""},
		{"Forbidden", core.CategoryForbiddenOperation, ""},
		{"some unrecognized message", core.CategoryGeneric, ""},
		{"", core.CategoryGeneric, ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			category, identifier := Classify(tt.message)
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantIdentifier, identifier)
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// "near" would match SYNTAX_ERROR but the identifier rule is checked first.
	category, identifier := Classify("no such column: nearby")
	assert.Equal(t, core.CategoryUnknownIdentifier, category)
	assert.Equal(t, "nearby", identifier)
}

func TestTranslate_UnknownIdentifier(t *testing.T) {
	exp := Translate("no such column: foo")

	assert.Equal(t, core.CategoryUnknownIdentifier, exp.Category)
	require.NotEmpty(t, exp.Reason)
	assert.Contains(t, exp.Reason[0], "foo")
	assert.True(t, exp.IsComplete())
}

func TestTranslate_PlaceholderWhenExtractionFails(t *testing.T) {
	exp := Translate("no such table")

	require.NotEmpty(t, exp.Reason)
	assert.Contains(t, exp.Reason[0], "called it ")
}

func TestTranslate_SyntaxError(t *testing.T) {
	exp := Translate("syntax error near SELECT")
	assert.Equal(t, core.CategorySyntaxError, exp.Category)
	assert.True(t, exp.IsComplete())
}

func TestTranslate_Generic(t *testing.T) {
	exp := Translate("some unrecognized message")
	assert.Equal(t, core.CategoryGeneric, exp.Category)
	assert.True(t, exp.IsComplete())
}

func TestTranslate_EveryCategoryComplete(t *testing.T) {
	for _, rule := range Rules {
		for _, p := range rule.Patterns {
			exp := Translate(p)
			assert.True(t, exp.IsComplete(), "category %s via %q has an empty section", rule.Category, p)
		}
	}
}

func TestTranslate_EmptyTemplateFallsBackToGeneric(t *testing.T) {
	saved := Templates[core.CategoryAmbiguousColumn]
	Templates[core.CategoryAmbiguousColumn] = Template{Meaning: []string{"only meaning"}}
	t.Cleanup(func() { Templates[core.CategoryAmbiguousColumn] = saved })

	exp := Translate("ambiguous column name: id")

	assert.Equal(t, core.CategoryGeneric, exp.Category)
	assert.Equal(t, Templates[core.CategoryGeneric].Meaning, exp.Meaning)
}

func TestTemplates_CoverAllCategories(t *testing.T) {
	for _, rule := range Rules {
		_, ok := Templates[rule.Category]
		assert.True(t, ok, "missing template for %s", rule.Category)
	}
	_, ok := Templates[core.CategoryGeneric]
	assert.True(t, ok)
}
