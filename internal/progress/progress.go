package progress

import (
	"math"
	"time"

	"github.com/google/uuid"

	"seventyFiveAPI/internal/streak"
	"seventyFiveAPI/internal/types/challenge"
	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/task"
)

type TaskStat struct {
	TaskID           uuid.UUID `json:"task_id"`
	Label            string    `json:"label"`
	TotalCompletions int       `json:"total_completions"`
	AverageValue     float64   `json:"average_value"`
	CompletionRate   int       `json:"completion_rate"`
}

type Stats struct {
	TotalDays            int         `json:"total_days"`
	CompletedDays        int         `json:"completed_days"`
	MissedDays           int         `json:"missed_days"`
	CurrentStreak        int         `json:"current_streak"`
	LongestStreak        int         `json:"longest_streak"`
	CompletionPercentage int         `json:"completion_percentage"`
	DaysRemaining        int         `json:"days_remaining"`
	TaskStats            []*TaskStat `json:"task_stats"`
}

// ComputeStats derives the full progress view for one user's entries in a
// challenge. Everything works over the already-fetched snapshot; nothing
// here touches storage.
func ComputeStats(ch *challenge.Challenge, tasks []*task.Task, entries []*entry.EntryWithCompletions, today time.Time) *Stats {
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(ch.StartDate.Year(), ch.StartDate.Month(), ch.StartDate.Day(), 0, 0, 0, 0, time.UTC)

	var completedDates []time.Time
	for _, e := range entries {
		if e.IsComplete {
			completedDates = append(completedDates, e.Date)
		}
	}

	daysSinceStart := int(todayDay.Sub(start).Hours()/24) + 1
	elapsedDays := clamp(daysSinceStart, 0, ch.DurationDays)
	completedDays := len(completedDates)

	// Today's still-open check-in is excluded from the missed count. The
	// start day is the one exception: it counts as missed right away until
	// the entry is saved.
	todayAdjustment := 1
	if start.Equal(todayDay) {
		todayAdjustment = 0
	}
	missedDays := elapsedDays - completedDays - todayAdjustment
	if missedDays < 0 {
		missedDays = 0
	}

	s := streak.Calculate(completedDates, todayDay)

	completionPct := 0
	if elapsedDays > 0 {
		completionPct = int(math.Round(float64(completedDays) / float64(elapsedDays) * 100))
	}

	daysRemaining := ch.DurationDays - elapsedDays
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	return &Stats{
		TotalDays:            ch.DurationDays,
		CompletedDays:        completedDays,
		MissedDays:           missedDays,
		CurrentStreak:        s.Current,
		LongestStreak:        s.Longest,
		CompletionPercentage: completionPct,
		DaysRemaining:        daysRemaining,
		TaskStats:            computeTaskStats(tasks, entries, elapsedDays),
	}
}

func computeTaskStats(tasks []*task.Task, entries []*entry.EntryWithCompletions, elapsedDays int) []*TaskStat {
	stats := make([]*TaskStat, 0, len(tasks))

	for _, t := range tasks {
		var count int
		var sum float64
		for _, e := range entries {
			for _, tc := range e.Completions {
				if tc.TaskID == t.ID && tc.IsCompleted {
					count++
					sum += tc.Value
				}
			}
		}

		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}
		rate := 0
		if elapsedDays > 0 {
			rate = int(math.Round(float64(count) / float64(elapsedDays) * 100))
		}

		stats = append(stats, &TaskStat{
			TaskID:           t.ID,
			Label:            t.Label,
			TotalCompletions: count,
			AverageValue:     avg,
			CompletionRate:   rate,
		})
	}

	return stats
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
