package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantAllowed bool
		wantKeyword string
	}{
		{name: "plain select", query: "SELECT name FROM students", wantAllowed: true},
		{name: "empty query", query: "", wantAllowed: true},
		{name: "drop table", query: "DROP TABLE students", wantKeyword: "DROP"},
		{name: "lowercase delete", query: "delete from students", wantKeyword: "DELETE"},
		{name: "mixed case update", query: "UpDaTe students SET marks = 0", wantKeyword: "UPDATE"},
		{name: "alter", query: "alter table students add column x", wantKeyword: "ALTER"},
		{name: "insert", query: "insert into students values (1)", wantKeyword: "INSERT"},
		{name: "truncate", query: "TRUNCATE students", wantKeyword: "TRUNCATE"},
		{name: "keyword inside identifier is blocked", query: "SELECT updated_at FROM logs", wantKeyword: "UPDATE"},
		{name: "keyword inside string literal is blocked", query: "SELECT * FROM t WHERE note = 'please drop me'", wantKeyword: "DROP"},
		{name: "first denylist entry wins", query: "DELETE FROM t; DROP TABLE t", wantKeyword: "DROP"},
	}

	g := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Check(tt.query)
			assert.Equal(t, tt.wantAllowed, v.Allowed)
			assert.Equal(t, tt.wantKeyword, v.BlockedKeyword)
		})
	}
}

func TestGuard_EveryDenylistedKeywordBlocks(t *testing.T) {
	g := New()
	for _, kw := range DefaultDenylist {
		for _, q := range []string{kw, "select 1 " + kw, "x" + kw + "x"} {
			assert.False(t, g.Check(q).Allowed, "query %q should be blocked", q)
		}
	}
}

func TestNew_ExtraKeywords(t *testing.T) {
	g := New("attach", " pragma ", "", "drop")

	assert.Equal(t, []string{"DROP", "DELETE", "UPDATE", "ALTER", "INSERT", "TRUNCATE", "ATTACH", "PRAGMA"}, g.Denylist())
	assert.False(t, g.Check("ATTACH DATABASE 'x.db' AS x").Allowed)
	assert.False(t, g.Check("pragma table_info(students)").Allowed)
}

func TestGuard_DenylistIsCopy(t *testing.T) {
	g := New()
	list := g.Denylist()
	list[0] = "SELECT"

	assert.True(t, g.Check("SELECT 1").Allowed)
}
