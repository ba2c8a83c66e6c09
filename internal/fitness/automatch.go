package fitness

import (
	"math"
	"strings"

	"github.com/google/uuid"

	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/fitness"
	"seventyFiveAPI/internal/types/task"
)

const milesPerKm = 0.621371

// keywordRule maps a label keyword to the provider activity-type substrings
// it should match. Rules are checked in order and the first label hit wins;
// an empty type list matches every activity ("activity" is a catch-all).
type keywordRule struct {
	keyword string
	types   []string
}

var keywordRules = []keywordRule{
	{"run", []string{"run", "running"}},
	{"walk", []string{"walk", "walking", "hike", "hiking"}},
	{"ride", []string{"ride", "virtualride", "ebikeride"}},
	{"bike", []string{"ride", "virtualride", "ebikeride"}},
	{"cycle", []string{"ride", "virtualride", "ebikeride"}},
	{"swim", []string{"swim", "swimming"}},
	{"hike", []string{"hike", "hiking", "walk", "walking"}},
	{"workout", []string{"workout", "weighttraining", "crossfit", "strength"}},
	{"exercise", []string{"workout", "weighttraining", "crossfit", "strength"}},
	{"training", []string{"workout", "weighttraining", "crossfit", "strength"}},
	{"activity", nil},
}

// SuggestCompletions computes a suggested value and completion flag per task
// from one day's fitness data. When the challenge has explicit task mappings
// those decide everything; otherwise the label/unit heuristics take over.
// Checkbox tasks are never auto-filled either way.
func SuggestCompletions(tasks []*task.Task, mappings []*fitness.TaskMapping, metrics *DayMetrics) []*entry.CompletionInput {
	if len(mappings) > 0 {
		return suggestFromMappings(tasks, mappings, metrics)
	}
	return suggestFromHeuristics(tasks, metrics)
}

// suggestFromMappings is the deterministic strategy: metric x multiplier,
// rounded to the nearest integer. Tasks without a mapping stay at zero.
func suggestFromMappings(tasks []*task.Task, mappings []*fitness.TaskMapping, metrics *DayMetrics) []*entry.CompletionInput {
	byTask := make(map[uuid.UUID]*fitness.TaskMapping, len(mappings))
	for _, m := range mappings {
		byTask[m.TaskID] = m
	}

	suggestions := make([]*entry.CompletionInput, 0, len(tasks))
	for _, t := range tasks {
		s := &entry.CompletionInput{TaskID: t.ID}

		if m, ok := byTask[t.ID]; ok && t.Type == task.TypeNumber {
			var raw float64
			switch m.Metric {
			case fitness.MetricDistance:
				raw = metrics.TotalDistanceMeters / 1000 // km
			case fitness.MetricDuration:
				raw = metrics.TotalDurationSeconds / 60 // minutes
			case fitness.MetricSteps:
				raw = metrics.TotalSteps
			case fitness.MetricCalories:
				raw = metrics.TotalCalories
			}
			s.Value = math.Round(raw * m.Multiplier)
			s.IsCompleted = s.Value >= t.TargetValue
		}

		suggestions = append(suggestions, s)
	}
	return suggestions
}

func suggestFromHeuristics(tasks []*task.Task, metrics *DayMetrics) []*entry.CompletionInput {
	suggestions := make([]*entry.CompletionInput, 0, len(tasks))
	for _, t := range tasks {
		s := &entry.CompletionInput{TaskID: t.ID}

		if t.Type == task.TypeNumber {
			s.Value = matchTaskToActivities(t, metrics.Activities)
			if s.Value == 0 && t.Unit != nil {
				s.Value = unitValueFromTotals(t, metrics)
			}
			s.IsCompleted = s.Value >= t.TargetValue
		}

		suggestions = append(suggestions, s)
	}
	return suggestions
}

// matchTaskToActivities filters the day's activities by the first activity
// keyword found in the task label, then sums a unit-appropriate metric over
// the matches.
func matchTaskToActivities(t *task.Task, activities []*fitness.Activity) float64 {
	if len(activities) == 0 {
		return 0
	}

	label := strings.ToLower(t.Label)
	unit := ""
	if t.Unit != nil {
		unit = strings.ToLower(*t.Unit)
	}

	var rule *keywordRule
	for i := range keywordRules {
		if strings.Contains(label, keywordRules[i].keyword) {
			rule = &keywordRules[i]
			break
		}
	}

	var matching []*fitness.Activity
	for _, a := range activities {
		if rule == nil || len(rule.types) == 0 {
			matching = append(matching, a)
			continue
		}
		activityType := strings.ToLower(a.ActivityType)
		for _, typ := range rule.types {
			if strings.Contains(activityType, typ) {
				matching = append(matching, a)
				break
			}
		}
	}

	if len(matching) == 0 {
		return 0
	}

	var total float64
	for _, a := range matching {
		switch {
		case strings.Contains(unit, "min") || strings.Contains(unit, "minute") || strings.Contains(unit, "time"):
			total += a.DurationSeconds / 60
		case strings.Contains(unit, "km") || strings.Contains(unit, "kilometer") || strings.Contains(unit, "distance"):
			total += a.DistanceMeters / 1000
		case strings.Contains(unit, "mile") || unit == "mi":
			total += a.DistanceMeters / 1000 * milesPerKm
		case strings.Contains(unit, "meter") || unit == "m":
			total += a.DistanceMeters
		case strings.Contains(unit, "step"):
			total += a.StepsCount
		case strings.Contains(unit, "calorie") || unit == "cal" || unit == "kcal":
			total += a.CaloriesBurned
		case strings.Contains(unit, "hour") || unit == "hr" || unit == "hrs":
			total += a.DurationSeconds / 3600
		default:
			// Generic "workout"/"exercise" wording: minutes moved.
			total += a.DurationSeconds / 60
		}
	}

	return roundForUnit(total, unit)
}

// unitValueFromTotals is the fallback when activity-type matching found
// nothing: read the metric the unit names off the whole day's aggregate.
func unitValueFromTotals(t *task.Task, metrics *DayMetrics) float64 {
	unit := strings.ToLower(*t.Unit)

	switch {
	case strings.Contains(unit, "km") || strings.Contains(unit, "kilometer") || strings.Contains(unit, "distance"):
		return roundTo1(metrics.TotalDistanceMeters / 1000)
	case strings.Contains(unit, "mile") || unit == "mi":
		return roundTo1(metrics.TotalDistanceMeters / 1000 * milesPerKm)
	case strings.Contains(unit, "meter") || unit == "m":
		return math.Round(metrics.TotalDistanceMeters)
	case strings.Contains(unit, "minute") || unit == "min" || unit == "mins" || strings.Contains(unit, "time"):
		return math.Round(metrics.TotalDurationSeconds / 60)
	case strings.Contains(unit, "hour") || unit == "hr" || unit == "hrs":
		return roundTo1(metrics.TotalDurationSeconds / 3600)
	case strings.Contains(unit, "step"):
		return metrics.TotalSteps
	case strings.Contains(unit, "calorie") || unit == "cal" || unit == "kcal":
		return metrics.TotalCalories
	case strings.Contains(unit, "exercise") || strings.Contains(unit, "workout") || strings.Contains(unit, "training"):
		return math.Round(metrics.TotalDurationSeconds / 60)
	}

	return 0
}

// roundForUnit keeps one decimal for the coarse units where fractions matter
// (hours, km, miles) and rounds everything else to a whole number.
func roundForUnit(v float64, unit string) float64 {
	switch {
	case strings.Contains(unit, "min") || strings.Contains(unit, "minute"):
		return math.Round(v)
	case strings.Contains(unit, "hour") || unit == "hr" || unit == "hrs":
		return roundTo1(v)
	case strings.Contains(unit, "km") || strings.Contains(unit, "kilometer"):
		return roundTo1(v)
	case strings.Contains(unit, "mile") || unit == "mi":
		return roundTo1(v)
	}
	return math.Round(v)
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
