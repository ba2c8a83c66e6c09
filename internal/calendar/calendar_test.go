package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildChallengeCalendarTenDaysIn(t *testing.T) {
	start := day(2026, 3, 1)
	today := day(2026, 3, 10) // day 10 of 20
	completed := []time.Time{
		day(2026, 3, 1),
		day(2026, 3, 2),
		day(2026, 3, 3),
		day(2026, 3, 5),
	}

	days := BuildChallengeCalendar(start, 20, completed, today)
	require.Len(t, days, 20)

	// Day numbering runs 1..durationDays from the start date.
	require.Equal(t, 1, days[0].DayNumber)
	require.Equal(t, start, days[0].Date)
	require.Equal(t, 20, days[19].DayNumber)

	// Completed days.
	for _, i := range []int{0, 1, 2, 4} {
		require.True(t, days[i].IsCompleted, "day %d should be completed", i+1)
		require.False(t, days[i].IsMissed)
	}

	// Day 4 and days 6-9 were skipped.
	for _, i := range []int{3, 5, 6, 7, 8} {
		require.True(t, days[i].IsMissed, "day %d should be missed", i+1)
	}

	// Today is neither missed nor future.
	require.True(t, days[9].IsToday)
	require.False(t, days[9].IsMissed)
	require.False(t, days[9].IsFuture)

	// Everything after today is future.
	for i := 10; i < 20; i++ {
		require.True(t, days[i].IsFuture, "day %d should be future", i+1)
		require.False(t, days[i].IsMissed)
	}
}

func TestBuildChallengeCalendarStatesAreExclusive(t *testing.T) {
	start := day(2026, 3, 1)
	today := day(2026, 3, 10)
	completed := []time.Time{day(2026, 3, 2), day(2026, 3, 10)}

	for _, d := range BuildChallengeCalendar(start, 20, completed, today) {
		states := 0
		for _, b := range []bool{d.IsCompleted, d.IsMissed, d.IsFuture} {
			if b {
				states++
			}
		}
		require.LessOrEqual(t, states, 1, "day %d has overlapping states", d.DayNumber)
	}
}

func TestBuildChallengeCalendarCompletedTodayNotMissed(t *testing.T) {
	start := day(2026, 3, 1)
	today := day(2026, 3, 5)

	days := BuildChallengeCalendar(start, 10, []time.Time{today}, today)
	require.True(t, days[4].IsToday)
	require.True(t, days[4].IsCompleted)
	require.False(t, days[4].IsMissed)
}

func TestBuildChallengeCalendarBeforeStart(t *testing.T) {
	// Viewing a challenge that starts tomorrow: every day is future.
	start := day(2026, 3, 2)
	today := day(2026, 3, 1)

	for _, d := range BuildChallengeCalendar(start, 5, nil, today) {
		require.True(t, d.IsFuture, "day %d should be future", d.DayNumber)
		require.False(t, d.IsMissed)
	}
}

func TestBuildChallengeCalendarAfterEnd(t *testing.T) {
	start := day(2026, 3, 1)
	today := day(2026, 5, 1)
	completed := []time.Time{day(2026, 3, 1)}

	days := BuildChallengeCalendar(start, 3, completed, today)
	require.True(t, days[0].IsCompleted)
	require.True(t, days[1].IsMissed)
	require.True(t, days[2].IsMissed)
	for _, d := range days {
		require.False(t, d.IsFuture)
		require.False(t, d.IsToday)
	}
}
