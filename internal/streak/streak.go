package streak

import (
	"sort"
	"time"
)

type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Calculate turns a set of completed calendar days into current/longest
// streak counts. Dates are treated as whole days; time-of-day and zone on
// the inputs are ignored. The caller supplies "today" so the computation is
// deterministic and can run against the viewer's profile timezone.
//
// The current streak is still alive when the most recent completed day is
// today or yesterday: someone who checked in last night but not yet this
// morning has not broken anything.
func Calculate(completedDates []time.Time, today time.Time) Streak {
	days := dedupeDays(completedDates)
	if len(days) == 0 {
		return Streak{}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	todayDay := truncateDay(today)
	mostRecent := days[len(days)-1]

	current := 0
	if daysBetween(mostRecent, todayDay) <= 1 {
		current = 1
		for i := len(days) - 1; i > 0; i-- {
			if daysBetween(days[i-1], days[i]) == 1 {
				current++
			} else {
				break
			}
		}
	}

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return Streak{Current: current, Longest: longest}
}

// dedupeDays collapses timestamps onto their calendar day and drops
// duplicates, so two check-in rows for the same date cannot double-count.
func dedupeDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := truncateDay(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
