package workers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"seventyFiveAPI/internal/notification"
	"seventyFiveAPI/internal/types/profile"
)

var (
	remindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Total check-in reminder pushes delivered",
	})
	remindersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminders_failed_total",
		Help: "Total check-in reminder pushes that failed to deliver",
	})
)

// reminderWindow is how far off a user's configured reminder time the
// worker will still fire, to absorb tick jitter.
const reminderWindow = 5 * time.Minute

// ReminderWorker pushes a daily check-in nudge to users who enabled
// reminders and still have an unfinished challenge for their local today.
type ReminderWorker struct {
	db       *pgxpool.Pool
	fcm      *notification.FCMService
	interval time.Duration
	stopChan chan struct{}

	// lastSent guards against double-firing inside one reminder window.
	lastSent map[uuid.UUID]string
}

func NewReminderWorker(db *pgxpool.Pool, fcm *notification.FCMService) *ReminderWorker {
	return &ReminderWorker{
		db:       db,
		fcm:      fcm,
		interval: 5 * time.Minute,
		stopChan: make(chan struct{}),
		lastSent: make(map[uuid.UUID]string),
	}
}

func (w *ReminderWorker) Start() {
	go w.loop()
	log.Println("ReminderWorker: started")
}

func (w *ReminderWorker) Stop() {
	close(w.stopChan)
}

func (w *ReminderWorker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(context.Background())
		case <-w.stopChan:
			return
		}
	}
}

func (w *ReminderWorker) runOnce(ctx context.Context) {
	profiles, err := w.reminderProfiles(ctx)
	if err != nil {
		log.Printf("ReminderWorker: failed to fetch profiles: %v", err)
		return
	}

	now := time.Now()
	sent := 0
	for _, p := range profiles {
		localDate, due := reminderDue(p, now)
		if !due {
			continue
		}
		if w.lastSent[p.ID] == localDate {
			continue
		}

		unfinished, err := w.hasUnfinishedChallenge(ctx, p.ID, localDate)
		if err != nil {
			log.Printf("ReminderWorker: check failed for user %s: %v", p.ID, err)
			continue
		}
		if !unfinished {
			w.lastSent[p.ID] = localDate
			continue
		}

		if err := w.sendReminder(ctx, p); err != nil {
			log.Printf("ReminderWorker: push failed for user %s: %v", p.ID, err)
			remindersFailed.Inc()
			continue
		}
		w.lastSent[p.ID] = localDate
		remindersSent.Inc()
		sent++
	}

	if sent > 0 {
		log.Printf("ReminderWorker: sent %d reminders", sent)
	}
}

// reminderDue reports whether the user's local clock is inside the window
// around their configured reminder time, and returns the user's local date.
func reminderDue(p *profile.Profile, now time.Time) (string, bool) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	localDate := local.Format("2006-01-02")

	parts := strings.SplitN(p.ReminderTime, ":", 2)
	if len(parts) != 2 {
		return localDate, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return localDate, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return localDate, false
	}

	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	diff := local.Sub(target)
	if diff < 0 {
		diff = -diff
	}
	return localDate, diff <= reminderWindow
}

func (w *ReminderWorker) reminderProfiles(ctx context.Context) ([]*profile.Profile, error) {
	query := `
	SELECT id, clerk_id, display_name, timezone, reminder_enabled, reminder_time
	FROM profiles
	WHERE reminder_enabled = true AND reminder_time <> '' AND timezone <> ''
	`
	rows, err := w.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p := &profile.Profile{}
		if err := rows.Scan(&p.ID, &p.ClerkID, &p.DisplayName, &p.Timezone, &p.ReminderEnabled, &p.ReminderTime); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// hasUnfinishedChallenge is true when the user owns or joined at least one
// active challenge without a complete entry for the given local date.
func (w *ReminderWorker) hasUnfinishedChallenge(ctx context.Context, userID uuid.UUID, localDate string) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1
		FROM (
			SELECT id, start_date, duration_days FROM challenges WHERE user_id = $1
			UNION
			SELECT c.id, c.start_date, c.duration_days
			FROM challenges c
			INNER JOIN challenge_members m ON m.challenge_id = c.id
			WHERE m.user_id = $1
		) AS c
		WHERE c.start_date <= $2::date
		  AND c.start_date + c.duration_days - 1 >= $2::date
		  AND NOT EXISTS (
			SELECT 1 FROM daily_entries e
			WHERE e.challenge_id = c.id AND e.user_id = $1 AND e.date = $2::date AND e.is_complete = true
		  )
	)
	`
	var unfinished bool
	err := w.db.QueryRow(ctx, query, userID, localDate).Scan(&unfinished)
	return unfinished, err
}

func (w *ReminderWorker) sendReminder(ctx context.Context, p *profile.Profile) error {
	tokens, err := w.deviceTokens(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	name := p.DisplayName
	if name == "" {
		name = "there"
	}
	title := "Don't forget your daily check-in!"
	body := fmt.Sprintf("Hey %s! You haven't completed today's check-in yet. Don't break your streak.", name)

	return w.fcm.SendPush(ctx, tokens, title, body, map[string]any{"type": "daily_reminder"})
}

func (w *ReminderWorker) deviceTokens(ctx context.Context, userID uuid.UUID) ([]profile.DeviceToken, error) {
	rows, err := w.db.Query(ctx,
		`SELECT user_id, token, platform, registered_at FROM reminder_devices WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []profile.DeviceToken
	for rows.Next() {
		var t profile.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.RegisteredAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
