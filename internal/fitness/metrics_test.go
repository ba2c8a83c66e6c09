package fitness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seventyFiveAPI/internal/types/fitness"
)

func TestAggregateSumsAllFields(t *testing.T) {
	m := Aggregate([]*fitness.Activity{
		{DistanceMeters: 5000, DurationSeconds: 1800, StepsCount: 6000, CaloriesBurned: 300},
		{DistanceMeters: 2000, DurationSeconds: 1200, StepsCount: 2500, CaloriesBurned: 120},
	})

	require.InDelta(t, 7000.0, m.TotalDistanceMeters, 0.001)
	require.InDelta(t, 3000.0, m.TotalDurationSeconds, 0.001)
	require.InDelta(t, 8500.0, m.TotalSteps, 0.001)
	require.InDelta(t, 420.0, m.TotalCalories, 0.001)
	require.Len(t, m.Activities, 2)
}

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil)
	require.Zero(t, m.TotalDistanceMeters)
	require.NotNil(t, m.Activities)
	require.Empty(t, m.Activities)
}

func TestDayWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start, end := DayWindow(time.Date(2026, 3, 10, 14, 30, 0, 0, loc))
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), start)
	require.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, int(999*time.Millisecond), loc), end)
	require.Equal(t, loc, start.Location())
}
