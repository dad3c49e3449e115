// Package cron evaluates a restricted 5-field cron expression against a point
// in time. Supported field forms are "*", exact integers, "*/n", inclusive
// ranges "a-b", and comma lists. Anything else fails closed: a malformed
// expression is simply never due.
package cron

import (
	"strconv"
	"strings"
	"time"
)

// Matches reports whether expr (minute hour day-of-month month day-of-week)
// matches t, interpreted in UTC. Sunday is weekday 0.
func Matches(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	u := t.UTC()
	values := [5]int{u.Minute(), u.Hour(), u.Day(), int(u.Month()), int(u.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, v int) bool {
	if field == "*" {
		return true
	}
	if n, err := strconv.Atoi(field); err == nil {
		return n == v
	}
	if rest, ok := strings.CutPrefix(field, "*/"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return false
		}
		return v%n == 0
	}
	if strings.Contains(field, ",") {
		for _, part := range strings.Split(field, ",") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return false
			}
			if n == v {
				return true
			}
		}
		return false
	}
	if lo, hi, ok := strings.Cut(field, "-"); ok {
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil {
			return false
		}
		return v >= a && v <= b
	}
	return false
}
