package fitness

import (
	"time"

	"seventyFiveAPI/internal/types/fitness"
)

// DayMetrics is the aggregate of every tracked activity in one calendar day.
type DayMetrics struct {
	TotalDistanceMeters  float64             `json:"total_distance_meters"`
	TotalDurationSeconds float64             `json:"total_duration_seconds"`
	TotalSteps           float64             `json:"total_steps"`
	TotalCalories        float64             `json:"total_calories"`
	Activities           []*fitness.Activity `json:"activities"`
}

// Aggregate sums the numeric fields of the given activities. Selection by
// date window is the caller's job; this is pure addition, with absent fields
// already zero-valued.
func Aggregate(activities []*fitness.Activity) *DayMetrics {
	m := &DayMetrics{Activities: activities}
	if m.Activities == nil {
		m.Activities = []*fitness.Activity{}
	}
	for _, a := range activities {
		m.TotalDistanceMeters += a.DistanceMeters
		m.TotalDurationSeconds += a.DurationSeconds
		m.TotalSteps += a.StepsCount
		m.TotalCalories += a.CaloriesBurned
	}
	return m
}

// DayWindow returns the [00:00:00, 23:59:59.999] bounds of the calendar day
// containing t, in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}
