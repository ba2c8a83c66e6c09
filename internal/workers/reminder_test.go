package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"seventyFiveAPI/internal/types/profile"
)

func TestReminderDueInsideWindow(t *testing.T) {
	p := &profile.Profile{Timezone: "UTC", ReminderTime: "20:00"}
	now := time.Date(2026, 3, 10, 20, 3, 0, 0, time.UTC)

	localDate, due := reminderDue(p, now)
	require.True(t, due)
	require.Equal(t, "2026-03-10", localDate)
}

func TestReminderDueOutsideWindow(t *testing.T) {
	p := &profile.Profile{Timezone: "UTC", ReminderTime: "20:00"}

	for _, now := range []time.Time{
		time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 20, 6, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	} {
		_, due := reminderDue(p, now)
		require.False(t, due, "should not fire at %s", now)
	}
}

func TestReminderDueUsesProfileTimezone(t *testing.T) {
	// 20:00 in New York is 01:00 UTC the next day (during DST).
	p := &profile.Profile{Timezone: "America/New_York", ReminderTime: "20:00"}
	now := time.Date(2026, 3, 11, 0, 2, 0, 0, time.UTC)

	localDate, due := reminderDue(p, now)
	require.True(t, due)
	require.Equal(t, "2026-03-10", localDate)
}

func TestReminderDueMalformedTime(t *testing.T) {
	for _, raw := range []string{"", "20", "8pm", "20:xx"} {
		p := &profile.Profile{Timezone: "UTC", ReminderTime: raw}
		_, due := reminderDue(p, time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC))
		require.False(t, due, "reminder time %q should not fire", raw)
	}
}
