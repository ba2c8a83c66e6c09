package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil, day(2026, 3, 10))
	require.Equal(t, 0, s.Current)
	require.Equal(t, 0, s.Longest)
}

func TestCalculateSingleDayToday(t *testing.T) {
	today := day(2026, 3, 10)
	s := Calculate([]time.Time{today}, today)
	require.Equal(t, 1, s.Current)
	require.Equal(t, 1, s.Longest)
}

func TestCalculateRunEndingYesterday(t *testing.T) {
	// Checked in three days straight, last one yesterday. The streak is
	// still alive because today's check-in can still happen.
	today := day(2026, 3, 10)
	dates := []time.Time{
		day(2026, 3, 7),
		day(2026, 3, 8),
		day(2026, 3, 9),
	}
	s := Calculate(dates, today)
	require.Equal(t, 3, s.Current)
	require.Equal(t, 3, s.Longest)
}

func TestCalculateBrokenStreak(t *testing.T) {
	// Most recent completion two days ago: current streak is gone, but the
	// old run still counts for longest.
	today := day(2026, 3, 10)
	dates := []time.Time{
		day(2026, 3, 4),
		day(2026, 3, 5),
		day(2026, 3, 6),
		day(2026, 3, 7),
		day(2026, 3, 8),
	}
	s := Calculate(dates, today)
	require.Equal(t, 0, s.Current)
	require.Equal(t, 5, s.Longest)
}

func TestCalculateLongestOlderThanCurrent(t *testing.T) {
	today := day(2026, 3, 10)
	dates := []time.Time{
		day(2026, 3, 1),
		day(2026, 3, 2),
		day(2026, 3, 3),
		day(2026, 3, 4),
		// gap
		day(2026, 3, 9),
		day(2026, 3, 10),
	}
	s := Calculate(dates, today)
	require.Equal(t, 2, s.Current)
	require.Equal(t, 4, s.Longest)
}

func TestCalculateUnsortedInput(t *testing.T) {
	today := day(2026, 3, 10)
	dates := []time.Time{
		day(2026, 3, 10),
		day(2026, 3, 8),
		day(2026, 3, 9),
	}
	s := Calculate(dates, today)
	require.Equal(t, 3, s.Current)
	require.Equal(t, 3, s.Longest)
}

func TestCalculateDuplicateDatesCollapse(t *testing.T) {
	today := day(2026, 3, 10)
	dates := []time.Time{
		day(2026, 3, 9),
		day(2026, 3, 9),
		day(2026, 3, 10),
		day(2026, 3, 10),
	}
	s := Calculate(dates, today)
	require.Equal(t, 2, s.Current)
	require.Equal(t, 2, s.Longest)
}

func TestCalculateIgnoresTimeOfDay(t *testing.T) {
	today := day(2026, 3, 10)
	dates := []time.Time{
		time.Date(2026, 3, 9, 23, 45, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 6, 15, 0, 0, time.UTC),
	}
	s := Calculate(dates, today)
	require.Equal(t, 2, s.Current)
}
