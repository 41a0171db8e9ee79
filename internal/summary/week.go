// Package summary builds the weekly aggregation: it selects classified
// documents for an ISO week, computes the category distribution and mindset
// indicators, and asks the model for a narrative summary.
package summary

import (
	"fmt"
	"time"
)

// WeekID formats the ISO week containing t as "YYYY-Wnn" in UTC.
func WeekID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeekID splits a "YYYY-Wnn" identifier into its ISO year and week.
func ParseWeekID(id string) (int, int, error) {
	var year, week int
	if _, err := fmt.Sscanf(id, "%d-W%d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week ID %q: expected YYYY-Wnn", id)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("invalid week ID %q: week out of range", id)
	}
	return year, week, nil
}

// WeekBounds returns the [start, end) window of an ISO week in UTC: the
// Monday at 00:00 through the following Monday.
func WeekBounds(id string) (time.Time, time.Time, error) {
	year, week, err := ParseWeekID(id)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// January 4th is always inside ISO week 1 of its year.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)

	start := week1Monday.AddDate(0, 0, (week-1)*7)
	if y, w := start.ISOWeek(); y != year || w != week {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid week ID %q: year %d has no week %d", id, year, week)
	}
	return start, start.AddDate(0, 0, 7), nil
}
