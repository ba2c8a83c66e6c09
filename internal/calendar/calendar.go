package calendar

import "time"

// Day is one day of a challenge, classified relative to "today" and the set
// of completed dates. Exactly one of the four flags can describe the day's
// state: a completed day is never missed, today is never missed, and future
// days are neither.
type Day struct {
	Date        time.Time `json:"date"`
	DayNumber   int       `json:"day_number"`
	IsCompleted bool      `json:"is_completed"`
	IsMissed    bool      `json:"is_missed"`
	IsFuture    bool      `json:"is_future"`
	IsToday     bool      `json:"is_today"`
}

const dateLayout = "2006-01-02"

// BuildChallengeCalendar produces one Day per day of the challenge,
// numbered 1..durationDays from the start date.
func BuildChallengeCalendar(startDate time.Time, durationDays int, completedDates []time.Time, today time.Time) []*Day {
	completed := make(map[string]bool, len(completedDates))
	for _, d := range completedDates {
		completed[d.Format(dateLayout)] = true
	}

	todayStr := today.Format(dateLayout)
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)

	days := make([]*Day, 0, durationDays)
	for i := 0; i < durationDays; i++ {
		date := start.AddDate(0, 0, i)
		dateStr := date.Format(dateLayout)

		day := &Day{
			Date:        date,
			DayNumber:   i + 1,
			IsCompleted: completed[dateStr],
			IsToday:     dateStr == todayStr,
			IsFuture:    date.After(todayDay),
		}
		day.IsMissed = !day.IsCompleted && !day.IsFuture && !day.IsToday
		days = append(days, day)
	}

	return days
}
