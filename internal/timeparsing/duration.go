// Package timeparsing resolves the time expressions accepted by list
// filters (--since, --until) into absolute timestamps.
//
// Expressions are tried against three layers in order:
//  1. Compact durations relative to now (+6h, -1d, +2w, 3m, 1y)
//  2. Natural language ("tomorrow", "last monday", "3 days ago")
//  3. Absolute timestamps (date-only, then RFC3339)
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// compactRe matches [+-]?<amount><unit> where unit is one of h, d, w, m, y.
var compactRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// IsCompactDuration reports whether s is a compact duration like +6h or -2w.
func IsCompactDuration(s string) bool {
	return compactRe.MatchString(s)
}

// ParseCompactDuration applies a compact duration to now. A missing sign
// means forward. Hours shift the clock directly; days, weeks, months and
// years go through AddDate so calendar arithmetic (month lengths, leap
// days) follows Go's normalization.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	m := compactRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount %q: %w", m[2], err)
	}
	if m[1] == "-" {
		amount = -amount
	}

	switch m[3] {
	case "h":
		return now.Add(time.Duration(amount) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, amount), nil
	case "w":
		return now.AddDate(0, 0, 7*amount), nil
	case "m":
		return now.AddDate(0, amount, 0), nil
	case "y":
		return now.AddDate(amount, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown duration unit %q", m[3])
}
