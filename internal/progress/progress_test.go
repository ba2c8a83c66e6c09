package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"seventyFiveAPI/internal/types/challenge"
	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/task"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func completeEntry(date time.Time, completions ...*entry.TaskCompletion) *entry.EntryWithCompletions {
	return &entry.EntryWithCompletions{
		DailyEntry:  entry.DailyEntry{Date: date, IsComplete: true},
		Completions: completions,
	}
}

func TestComputeStatsMidChallenge(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 1),
		DurationDays: 75,
	}
	today := day(2026, 3, 11) // day 11

	var entries []*entry.EntryWithCompletions
	for i := 0; i < 8; i++ {
		entries = append(entries, completeEntry(day(2026, 3, 1).AddDate(0, 0, i)))
	}

	stats := ComputeStats(ch, nil, entries, today)

	require.Equal(t, 75, stats.TotalDays)
	require.Equal(t, 8, stats.CompletedDays)
	// 11 days elapsed, 8 complete, today still open: 2 missed.
	require.Equal(t, 2, stats.MissedDays)
	require.Equal(t, 73, stats.CompletionPercentage) // round(8/11*100)
	require.Equal(t, 64, stats.DaysRemaining)
	require.Equal(t, 0, stats.CurrentStreak) // last completion was 3 days ago
	require.Equal(t, 8, stats.LongestStreak)
}

func TestComputeStatsFirstDayOpenEntryCountsMissed(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 1),
		DurationDays: 75,
	}
	today := day(2026, 3, 1)

	// The start day has no prior day to leave open, so an unsaved entry
	// counts as missed immediately.
	stats := ComputeStats(ch, nil, nil, today)
	require.Equal(t, 0, stats.CompletedDays)
	require.Equal(t, 1, stats.MissedDays)
	require.Equal(t, 0, stats.CompletionPercentage)
	require.Equal(t, 74, stats.DaysRemaining)
}

func TestComputeStatsFirstDayCompleteNothingMissed(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 1),
		DurationDays: 75,
	}
	today := day(2026, 3, 1)

	stats := ComputeStats(ch, nil, []*entry.EntryWithCompletions{completeEntry(today)}, today)
	require.Equal(t, 1, stats.CompletedDays)
	require.Equal(t, 0, stats.MissedDays)
	require.Equal(t, 100, stats.CompletionPercentage)
}

func TestComputeStatsBeforeStart(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 10),
		DurationDays: 30,
	}
	today := day(2026, 3, 1)

	stats := ComputeStats(ch, nil, nil, today)
	require.Equal(t, 0, stats.MissedDays)
	require.Equal(t, 0, stats.CompletionPercentage)
	require.Equal(t, 30, stats.DaysRemaining)
}

func TestComputeStatsChallengeOver(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 1, 1),
		DurationDays: 10,
	}
	today := day(2026, 2, 15)

	var entries []*entry.EntryWithCompletions
	for i := 0; i < 10; i++ {
		entries = append(entries, completeEntry(day(2026, 1, 1).AddDate(0, 0, i)))
	}

	stats := ComputeStats(ch, nil, entries, today)
	require.Equal(t, 10, stats.CompletedDays)
	require.Equal(t, 0, stats.MissedDays)
	require.Equal(t, 100, stats.CompletionPercentage)
	require.Equal(t, 0, stats.DaysRemaining)
	require.Equal(t, 10, stats.LongestStreak)
}

func TestComputeStatsIncompleteEntriesDoNotCount(t *testing.T) {
	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 1),
		DurationDays: 75,
	}
	today := day(2026, 3, 3)

	entries := []*entry.EntryWithCompletions{
		completeEntry(day(2026, 3, 1)),
		{DailyEntry: entry.DailyEntry{Date: day(2026, 3, 2), IsComplete: false}},
	}

	stats := ComputeStats(ch, nil, entries, today)
	require.Equal(t, 1, stats.CompletedDays)
	require.Equal(t, 1, stats.MissedDays)
}

func TestComputeStatsPerTask(t *testing.T) {
	readID := uuid.New()
	runID := uuid.New()
	tasks := []*task.Task{
		{ID: readID, Label: "Read 10 pages", Type: task.TypeNumber},
		{ID: runID, Label: "Run 5 km", Type: task.TypeNumber},
	}

	ch := &challenge.Challenge{
		StartDate:    day(2026, 3, 1),
		DurationDays: 75,
	}
	today := day(2026, 3, 4) // 4 elapsed days

	entries := []*entry.EntryWithCompletions{
		completeEntry(day(2026, 3, 1),
			&entry.TaskCompletion{TaskID: readID, Value: 10, IsCompleted: true},
			&entry.TaskCompletion{TaskID: runID, Value: 5, IsCompleted: true},
		),
		completeEntry(day(2026, 3, 2),
			&entry.TaskCompletion{TaskID: readID, Value: 20, IsCompleted: true},
			&entry.TaskCompletion{TaskID: runID, Value: 0, IsCompleted: false},
		),
	}

	stats := ComputeStats(ch, tasks, entries, today)
	require.Len(t, stats.TaskStats, 2)

	read := stats.TaskStats[0]
	require.Equal(t, readID, read.TaskID)
	require.Equal(t, 2, read.TotalCompletions)
	require.InDelta(t, 15.0, read.AverageValue, 0.001)
	require.Equal(t, 50, read.CompletionRate)

	run := stats.TaskStats[1]
	require.Equal(t, 1, run.TotalCompletions)
	require.InDelta(t, 5.0, run.AverageValue, 0.001)
	require.Equal(t, 25, run.CompletionRate)
}
