// Package guard blocks queries that contain mutating SQL keywords.
//
// Matching is a plain substring test on the uppercased query. A column
// named updated_at is therefore blocked along with UPDATE statements;
// the playground favors safety over precision.
package guard

import (
	"strings"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// DefaultDenylist is the set of keywords whose presence forbids execution.
var DefaultDenylist = []string{"DROP", "DELETE", "UPDATE", "ALTER", "INSERT", "TRUNCATE"}

// Guard checks queries against a fixed keyword denylist.
type Guard struct {
	denylist []string
}

// New creates a Guard using DefaultDenylist extended with extra keywords.
// Extra keywords are uppercased; blanks and duplicates are ignored.
func New(extra ...string) *Guard {
	seen := make(map[string]struct{}, len(DefaultDenylist)+len(extra))
	list := make([]string, 0, len(DefaultDenylist)+len(extra))
	for _, kw := range append(append([]string{}, DefaultDenylist...), extra...) {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		list = append(list, kw)
	}
	return &Guard{denylist: list}
}

// Check returns BLOCKED with the first denylisted keyword found in query,
// or ALLOWED when none is present.
func (g *Guard) Check(query string) core.Verdict {
	upper := strings.ToUpper(query)
	for _, kw := range g.denylist {
		if strings.Contains(upper, kw) {
			return core.Verdict{Allowed: false, BlockedKeyword: kw}
		}
	}
	return core.Verdict{Allowed: true}
}

// Denylist returns a copy of the keywords this guard blocks.
func (g *Guard) Denylist() []string {
	return append([]string(nil), g.denylist...)
}
