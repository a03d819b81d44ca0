package timeparsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateOnlyLayout accepts bare calendar dates, resolved at midnight in the
// reference time's location.
const dateOnlyLayout = "2006-01-02"

// nlpParser is shared across calls. Rules are registered once here and the
// parser is read-only afterwards, so concurrent Parse calls are safe.
var nlpParser = newNLPParser()

func newNLPParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseNaturalLanguage resolves expressions like "tomorrow", "next monday"
// or "3 days ago" against the reference time now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := nlpParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("no date or time recognized in %q", s)
	}
	return r.Time, nil
}

// ParseRelativeTime resolves a time expression by trying each layer in
// order: compact duration, natural language, date-only, RFC3339. The first
// layer that accepts the expression wins.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	expr := strings.TrimSpace(s)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	if IsCompactDuration(expr) {
		return ParseCompactDuration(expr, now)
	}

	if t, err := ParseNaturalLanguage(expr, now); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(dateOnlyLayout, expr, now.Location()); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time expression %q (try -2d, \"last monday\", or 2025-01-02)", s)
}
