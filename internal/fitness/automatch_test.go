package fitness

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/fitness"
	"seventyFiveAPI/internal/types/task"
)

func strPtr(s string) *string { return &s }

func numberTask(label, unit string, target float64) *task.Task {
	return &task.Task{
		ID:          uuid.New(),
		Label:       label,
		Type:        task.TypeNumber,
		TargetValue: target,
		Unit:        strPtr(unit),
	}
}

func findSuggestion(t *testing.T, suggestions []*entry.CompletionInput, taskID uuid.UUID) *entry.CompletionInput {
	t.Helper()
	for _, s := range suggestions {
		if s.TaskID == taskID {
			return s
		}
	}
	t.Fatalf("no suggestion for task %s", taskID)
	return nil
}

func TestSuggestRunTaskFromRunActivity(t *testing.T) {
	runTask := numberTask("Run 5k", "km", 5)
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 6000, DurationSeconds: 2100},
	})

	suggestions := SuggestCompletions([]*task.Task{runTask}, nil, metrics)
	s := findSuggestion(t, suggestions, runTask.ID)
	require.InDelta(t, 6.0, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}

func TestSuggestRunTaskFallsBackToDayTotals(t *testing.T) {
	// No run activity matched the label, so the unit fallback reads the
	// day's total distance instead.
	runTask := numberTask("Run 5k", "km", 5)
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "ride", DistanceMeters: 20000, DurationSeconds: 3600},
	})

	suggestions := SuggestCompletions([]*task.Task{runTask}, nil, metrics)
	s := findSuggestion(t, suggestions, runTask.ID)
	require.InDelta(t, 20.0, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}

func TestSuggestWorkoutMinutes(t *testing.T) {
	workout := numberTask("45 minute workout", "minutes", 45)
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "weighttraining", DurationSeconds: 1800},
		{ActivityType: "crossfit", DurationSeconds: 1200},
	})

	suggestions := SuggestCompletions([]*task.Task{workout}, nil, metrics)
	s := findSuggestion(t, suggestions, workout.ID)
	require.InDelta(t, 50.0, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}

func TestSuggestCheckboxNeverAutoFilled(t *testing.T) {
	checkbox := &task.Task{
		ID:    uuid.New(),
		Label: "Run outside",
		Type:  task.TypeCheckbox,
	}
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 10000, DurationSeconds: 3000},
	})

	suggestions := SuggestCompletions([]*task.Task{checkbox}, nil, metrics)
	s := findSuggestion(t, suggestions, checkbox.ID)
	require.Zero(t, s.Value)
	require.False(t, s.IsCompleted)
}

func TestSuggestCheckboxNeverAutoFilledWithMapping(t *testing.T) {
	checkbox := &task.Task{
		ID:    uuid.New(),
		Label: "Run outside",
		Type:  task.TypeCheckbox,
	}
	mappings := []*fitness.TaskMapping{
		{TaskID: checkbox.ID, Metric: fitness.MetricDistance, Multiplier: 1},
	}
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 10000},
	})

	suggestions := SuggestCompletions([]*task.Task{checkbox}, mappings, metrics)
	s := findSuggestion(t, suggestions, checkbox.ID)
	require.Zero(t, s.Value)
	require.False(t, s.IsCompleted)
}

func TestSuggestFromMappings(t *testing.T) {
	distTask := numberTask("Cover distance", "km", 8)
	calTask := numberTask("Burn calories", "kcal", 500)
	mappings := []*fitness.TaskMapping{
		{TaskID: distTask.ID, Metric: fitness.MetricDistance, Multiplier: 1},
		{TaskID: calTask.ID, Metric: fitness.MetricCalories, Multiplier: 1},
	}
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 7500, CaloriesBurned: 320},
		{ActivityType: "walk", DistanceMeters: 2000, CaloriesBurned: 90},
	})

	suggestions := SuggestCompletions([]*task.Task{distTask, calTask}, mappings, metrics)

	dist := findSuggestion(t, suggestions, distTask.ID)
	require.InDelta(t, 10.0, dist.Value, 0.001) // round(9.5 km)
	require.True(t, dist.IsCompleted)

	cal := findSuggestion(t, suggestions, calTask.ID)
	require.InDelta(t, 410.0, cal.Value, 0.001)
	require.False(t, cal.IsCompleted)
}

func TestSuggestMappingMultiplier(t *testing.T) {
	// Duration mapping with a 1/60 multiplier turns minutes into hours.
	hoursTask := numberTask("Train", "hours", 1)
	mappings := []*fitness.TaskMapping{
		{TaskID: hoursTask.ID, Metric: fitness.MetricDuration, Multiplier: 1.0 / 60},
	}
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "workout", DurationSeconds: 7200},
	})

	suggestions := SuggestCompletions([]*task.Task{hoursTask}, mappings, metrics)
	s := findSuggestion(t, suggestions, hoursTask.ID)
	require.InDelta(t, 2.0, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}

func TestSuggestUnmappedTaskStaysZero(t *testing.T) {
	mapped := numberTask("Cover distance", "km", 8)
	unmapped := numberTask("Read pages", "pages", 10)
	mappings := []*fitness.TaskMapping{
		{TaskID: mapped.ID, Metric: fitness.MetricDistance, Multiplier: 1},
	}
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 9000},
	})

	suggestions := SuggestCompletions([]*task.Task{mapped, unmapped}, mappings, metrics)
	s := findSuggestion(t, suggestions, unmapped.ID)
	require.Zero(t, s.Value)
	require.False(t, s.IsCompleted)
}

func TestSuggestStepsFallback(t *testing.T) {
	steps := numberTask("Daily steps", "steps", 10000)
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "walk", StepsCount: 6000},
		{ActivityType: "run", StepsCount: 5000},
	})

	suggestions := SuggestCompletions([]*task.Task{steps}, nil, metrics)
	s := findSuggestion(t, suggestions, steps.ID)
	require.InDelta(t, 11000.0, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}

func TestSuggestNoActivities(t *testing.T) {
	runTask := numberTask("Run 5k", "km", 5)
	suggestions := SuggestCompletions([]*task.Task{runTask}, nil, Aggregate(nil))
	s := findSuggestion(t, suggestions, runTask.ID)
	require.Zero(t, s.Value)
	require.False(t, s.IsCompleted)
}

func TestSuggestMilesConversion(t *testing.T) {
	miles := numberTask("Run 3 miles", "miles", 3)
	metrics := Aggregate([]*fitness.Activity{
		{ActivityType: "run", DistanceMeters: 5000},
	})

	suggestions := SuggestCompletions([]*task.Task{miles}, nil, metrics)
	s := findSuggestion(t, suggestions, miles.ID)
	require.InDelta(t, 3.1, s.Value, 0.001)
	require.True(t, s.IsCompleted)
}
