package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDateRejectsOtherFormats(t *testing.T) {
	for _, raw := range []string{"10-03-2026", "2026/03/10", "2026-03-10T00:00:00Z", "march 10", ""} {
		_, err := ParseDate(raw)
		require.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestTodayInUsesLocalCalendarDate(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	before := time.Now().In(loc)
	got := TodayIn("Pacific/Auckland")
	after := time.Now().In(loc)

	// Tolerate the call straddling local midnight.
	require.Contains(t, []time.Time{
		time.Date(before.Year(), before.Month(), before.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestTodayInUnknownTimezoneFallsBackToUTC(t *testing.T) {
	utc := TodayIn("")
	require.Equal(t, TodayIn("Not/AZone"), utc)
	require.Equal(t, time.UTC, utc.Location())
	require.Equal(t, 0, utc.Hour())
}
