package llm

import (
	"strings"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

type section int

const (
	sectionNone section = iota
	sectionMeaning
	sectionReason
	sectionFix
)

// headers are matched case-insensitively against the start of a line.
var headers = []struct {
	prefix  string
	section section
}{
	{"meaning", sectionMeaning},
	{"reason", sectionReason},
	{"how to fix", sectionFix},
}

var bulletMarkers = []string{"-", "*", "•"}

// ParseSteps turns a free-text answer into steps, one per non-blank line.
func ParseSteps(response string) core.Steps {
	var steps core.Steps
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

// ParseErrorExplanation scans a Meaning/Reason/How to Fix answer. Header
// lines switch the active section; bullet lines are appended to it with
// the marker stripped. Anything else is ignored.
func ParseErrorExplanation(response string) core.ErrorExplanation {
	var exp core.ErrorExplanation
	current := sectionNone

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if s, ok := headerSection(line); ok {
			current = s
			continue
		}

		item, ok := stripBullet(line)
		if !ok || item == "" {
			continue
		}

		switch current {
		case sectionMeaning:
			exp.Meaning = append(exp.Meaning, item)
		case sectionReason:
			exp.Reason = append(exp.Reason, item)
		case sectionFix:
			exp.Fix = append(exp.Fix, item)
		case sectionNone:
		}
	}

	return exp
}

func headerSection(line string) (section, bool) {
	lower := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(strings.TrimLeft(line, "#")), "**"))
	for _, h := range headers {
		if strings.HasPrefix(lower, h.prefix) {
			return h.section, true
		}
	}
	return sectionNone, false
}

func stripBullet(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m)), true
		}
	}
	return "", false
}
