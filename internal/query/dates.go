package query

import (
	"regexp"
	"strings"
	"time"
)

var (
	isoDatePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDatePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
)

// ResolveDateFromText extracts a calendar date referenced in free text.
//
// Recognized forms, in order: explicit ISO dates ("2024-01-02"), explicit
// DD/MM/YYYY dates, then the relative terms "yesterday" and "today"
// resolved against now. Returns nil when no date reference is found,
// which downstream layers read as "unspecified": the aggregation layer
// substitutes the most recent available trading day.
func ResolveDateFromText(text string, now time.Time) *time.Time {
	if m := isoDatePattern.FindString(text); m != "" {
		if d, err := time.Parse("2006-01-02", m); err == nil {
			return &d
		}
	}
	if m := slashDatePattern.FindString(text); m != "" {
		if d, err := time.Parse("02/01/2006", m); err == nil {
			return &d
		}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "yesterday") {
		d := truncateToDate(now.AddDate(0, 0, -1))
		return &d
	}
	if strings.Contains(lower, "today") {
		d := truncateToDate(now)
		return &d
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
