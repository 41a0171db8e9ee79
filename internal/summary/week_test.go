package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekID(t *testing.T) {
	// 2024-01-01 is a Monday, ISO week 1 of 2024
	assert.Equal(t, "2024-W01", WeekID(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	// Sunday of the same week
	assert.Equal(t, "2024-W01", WeekID(time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC)))
	// Next Monday rolls over
	assert.Equal(t, "2024-W02", WeekID(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
}

func TestWeekID_ISOYearBoundary(t *testing.T) {
	// 2024-12-30 is a Monday belonging to ISO week 1 of 2025
	assert.Equal(t, "2025-W01", WeekID(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
	// 2023-01-01 is a Sunday belonging to ISO week 52 of 2022
	assert.Equal(t, "2022-W52", WeekID(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseWeekID(t *testing.T) {
	year, week, err := ParseWeekID("2024-W07")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 7, week)

	_, _, err = ParseWeekID("2024-07")
	assert.Error(t, err)

	_, _, err = ParseWeekID("garbage")
	assert.Error(t, err)

	_, _, err = ParseWeekID("2024-W00")
	assert.Error(t, err)

	_, _, err = ParseWeekID("2024-W54")
	assert.Error(t, err)
}

func TestWeekBounds(t *testing.T) {
	start, end, err := WeekBounds("2024-W01")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Monday, start.Weekday())
}

func TestWeekBounds_RoundTripsWithWeekID(t *testing.T) {
	for _, id := range []string{"2024-W01", "2024-W26", "2025-W01", "2020-W53"} {
		start, end, err := WeekBounds(id)
		require.NoError(t, err)
		assert.Equal(t, id, WeekID(start), "start of %s must map back to it", id)
		assert.Equal(t, id, WeekID(end.Add(-time.Second)), "last instant of %s must map back to it", id)
		assert.NotEqual(t, id, WeekID(end), "end bound is exclusive")
	}
}

func TestWeekBounds_RejectsNonexistentWeek(t *testing.T) {
	// 2024 has 52 ISO weeks
	_, _, err := WeekBounds("2024-W53")
	assert.Error(t, err)
}
