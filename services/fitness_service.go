package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	fitnesscore "seventyFiveAPI/internal/fitness"
	"seventyFiveAPI/internal/strava"
	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/fitness"
	"seventyFiveAPI/internal/types/task"
)

const syncLookback = 7 * 24 * time.Hour

type FitnessService struct {
	db     *pgxpool.Pool
	strava *strava.Client
}

func NewFitnessService(db *pgxpool.Pool, stravaClient *strava.Client) *FitnessService {
	return &FitnessService{db: db, strava: stravaClient}
}

// AuthorizationURL starts the provider connect flow. The Clerk ID rides in
// the OAuth state so the callback can attach tokens to the right user.
func (s *FitnessService) AuthorizationURL(clerkID string) string {
	return s.strava.AuthorizationURL(clerkID)
}

// HandleCallback finishes the OAuth dance: exchange the code and store the
// token set, reactivating a previous connection if one exists.
func (s *FitnessService) HandleCallback(ctx context.Context, clerkID string, code string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	tok, err := s.strava.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	athleteID := strava.AthleteID(tok)
	query := `
	INSERT INTO fitness_providers (id, user_id, provider, access_token, refresh_token, token_expires_at, athlete_id, connected_at, is_active)
	VALUES ($1, $2, 'strava', $3, $4, $5, NULLIF($6, ''), NOW(), true)
	ON CONFLICT (user_id, provider)
	DO UPDATE SET
		access_token = $3,
		refresh_token = $4,
		token_expires_at = $5,
		athlete_id = NULLIF($6, ''),
		connected_at = NOW(),
		is_active = true
	`
	_, err = s.db.Exec(ctx, query, uuid.New(), userID, tok.AccessToken, tok.RefreshToken, tok.Expiry, athleteID)
	if err != nil {
		return fmt.Errorf("failed to store provider tokens: %w", err)
	}

	log.Printf("HandleCallback: %s connected strava (athlete %s)", clerkID, athleteID)
	return nil
}

func (s *FitnessService) Status(ctx context.Context, clerkID string) (*fitness.ConnectionStatus, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	p := &fitness.Provider{}
	query := `
	SELECT id, user_id, provider, athlete_id, connected_at, last_sync_at, is_active
	FROM fitness_providers
	WHERE user_id = $1 AND provider = 'strava' AND is_active = true
	`
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Provider, &p.AthleteID, &p.ConnectedAt, &p.LastSyncAt, &p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &fitness.ConnectionStatus{Connected: false}, nil
		}
		return nil, fmt.Errorf("failed to get provider status: %w", err)
	}

	return &fitness.ConnectionStatus{
		Connected:  true,
		Provider:   p.Provider,
		AthleteID:  p.AthleteID,
		LastSyncAt: p.LastSyncAt,
	}, nil
}

// Disconnect deactivates the connection and drops the stored tokens. Synced
// activities stay.
func (s *FitnessService) Disconnect(ctx context.Context, clerkID string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`UPDATE fitness_providers SET is_active = false, access_token = '', refresh_token = '' WHERE user_id = $1 AND provider = 'strava'`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to disconnect provider: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no fitness provider connected")
	}
	return nil
}

// SyncNow pulls recent provider activities for the calling user.
func (s *FitnessService) SyncNow(ctx context.Context, clerkID string) (*fitness.SyncResult, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	p, err := s.activeProvider(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.SyncProvider(ctx, p)
	result := &fitness.SyncResult{UserID: userID, Success: err == nil, ActivitiesSynced: count}
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	return result, nil
}

// ListActiveProviders returns every active connection; the auto-sync worker
// iterates these.
func (s *FitnessService) ListActiveProviders(ctx context.Context) ([]*fitness.Provider, error) {
	query := `
	SELECT id, user_id, provider, access_token, refresh_token, token_expires_at, athlete_id, connected_at, last_sync_at, is_active
	FROM fitness_providers
	WHERE provider = 'strava' AND is_active = true
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch providers: %w", err)
	}
	defer rows.Close()

	var providers []*fitness.Provider
	for rows.Next() {
		p := &fitness.Provider{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Provider, &p.AccessToken, &p.RefreshToken, &p.TokenExpiresAt, &p.AthleteID, &p.ConnectedAt, &p.LastSyncAt, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// SyncProvider refreshes the token when expired, pulls activities since the
// last sync (with a lookback window), and upserts them keyed on
// (user, provider, provider_activity_id).
func (s *FitnessService) SyncProvider(ctx context.Context, p *fitness.Provider) (int, error) {
	accessToken := p.AccessToken

	if p.TokenExpiresAt == nil || !p.TokenExpiresAt.After(time.Now()) {
		tok, err := s.strava.RefreshToken(ctx, p.RefreshToken)
		if err != nil {
			return 0, err
		}
		accessToken = tok.AccessToken

		// Strava rotates refresh tokens; persist the new pair before using it.
		_, err = s.db.Exec(ctx,
			`UPDATE fitness_providers SET access_token = $2, refresh_token = $3, token_expires_at = $4 WHERE id = $1`,
			p.ID, tok.AccessToken, tok.RefreshToken, tok.Expiry,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to persist refreshed tokens: %w", err)
		}
	}

	after := time.Now().Add(-syncLookback)
	if p.LastSyncAt != nil && p.LastSyncAt.After(after) {
		after = *p.LastSyncAt
	}

	activities, err := s.strava.ListActivities(ctx, accessToken, after, 100)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, a := range activities {
		if err := s.upsertActivity(ctx, p.UserID, a); err != nil {
			log.Printf("SyncProvider: failed to store activity %d for user %s: %v", a.ID, p.UserID, err)
			continue
		}
		synced++
	}

	_, err = s.db.Exec(ctx, `UPDATE fitness_providers SET last_sync_at = NOW() WHERE id = $1`, p.ID)
	if err != nil {
		return synced, fmt.Errorf("failed to update last sync time: %w", err)
	}

	return synced, nil
}

func (s *FitnessService) upsertActivity(ctx context.Context, userID uuid.UUID, a *strava.Activity) error {
	startDate, err := time.Parse(time.RFC3339, a.StartDate)
	if err != nil {
		return fmt.Errorf("invalid activity start date %q: %w", a.StartDate, err)
	}

	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO fitness_activities (id, user_id, provider, provider_activity_id, activity_type, name, start_date, duration_seconds, distance_meters, calories_burned, steps_count, raw_data)
	VALUES ($1, $2, 'strava', $3, LOWER($4), $5, $6, $7, $8, $9, 0, $10)
	ON CONFLICT (user_id, provider, provider_activity_id)
	DO UPDATE SET
		activity_type = LOWER($4),
		name = $5,
		start_date = $6,
		duration_seconds = $7,
		distance_meters = $8,
		calories_burned = $9,
		raw_data = $10
	`
	_, err = s.db.Exec(ctx, query,
		uuid.New(), userID, fmt.Sprintf("%d", a.ID), a.Type, a.Name, startDate, a.ElapsedTime, a.Distance, a.Calories, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}
	return nil
}

// ActivitiesForDate selects the user's activities whose start falls inside
// the given calendar day in their profile timezone.
func (s *FitnessService) ActivitiesForDate(ctx context.Context, clerkID string, date time.Time) ([]*fitness.Activity, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	loc, err := s.userLocation(ctx, userID)
	if err != nil {
		return nil, err
	}
	localDate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	start, end := fitnesscore.DayWindow(localDate)

	query := `
	SELECT id, user_id, provider, provider_activity_id, activity_type, name, start_date, duration_seconds, distance_meters, calories_burned, steps_count
	FROM fitness_activities
	WHERE user_id = $1 AND start_date >= $2 AND start_date <= $3
	ORDER BY start_date
	`
	rows, err := s.db.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer rows.Close()

	var activities []*fitness.Activity
	for rows.Next() {
		a := &fitness.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Provider, &a.ProviderActivityID, &a.ActivityType, &a.Name, &a.StartDate, &a.DurationSeconds, &a.DistanceMeters, &a.CaloriesBurned, &a.StepsCount); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if activities == nil {
		activities = []*fitness.Activity{}
	}
	return activities, nil
}

func (s *FitnessService) MetricsForDate(ctx context.Context, clerkID string, date time.Time) (*fitnesscore.DayMetrics, error) {
	activities, err := s.ActivitiesForDate(ctx, clerkID, date)
	if err != nil {
		return nil, err
	}
	return fitnesscore.Aggregate(activities), nil
}

// SuggestCompletions runs the auto-matcher for a challenge's tasks against
// one day of fitness data, for prefilling the check-in form.
func (s *FitnessService) SuggestCompletions(ctx context.Context, clerkID string, challengeID uuid.UUID, date time.Time) ([]*entry.CompletionInput, error) {
	metrics, err := s.MetricsForDate(ctx, clerkID, date)
	if err != nil {
		return nil, err
	}

	taskRows, err := s.db.Query(ctx,
		`SELECT id, challenge_id, label, type, target_value, unit, is_required, position, created_at FROM tasks WHERE challenge_id = $1 ORDER BY position, created_at`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer taskRows.Close()

	var tasks []*task.Task
	for taskRows.Next() {
		t := &task.Task{}
		if err := taskRows.Scan(&t.ID, &t.ChallengeID, &t.Label, &t.Type, &t.TargetValue, &t.Unit, &t.IsRequired, &t.Position, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = taskRows.Err(); err != nil {
		return nil, err
	}

	mappings, err := s.ListMappings(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	return fitnesscore.SuggestCompletions(tasks, mappings, metrics), nil
}

func (s *FitnessService) CreateMapping(ctx context.Context, clerkID string, req *fitness.CreateMappingRequest) (*fitness.TaskMapping, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	switch req.Metric {
	case fitness.MetricDistance, fitness.MetricDuration, fitness.MetricSteps, fitness.MetricCalories:
	default:
		return nil, fmt.Errorf("invalid metric %q", req.Metric)
	}
	multiplier := req.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}

	// Only the owner of the task's challenge may map it.
	query := `
	INSERT INTO fitness_task_mappings (id, task_id, activity_type, metric, multiplier, created_at)
	SELECT $1, t.id, $3, $4, $5, NOW()
	FROM tasks t
	INNER JOIN challenges c ON c.id = t.challenge_id
	WHERE t.id = $2 AND c.user_id = $6
	RETURNING id, task_id, activity_type, metric, multiplier, created_at
	`
	m := &fitness.TaskMapping{}
	err = s.db.QueryRow(ctx, query, uuid.New(), req.TaskID, req.ActivityType, req.Metric, multiplier, userID).Scan(
		&m.ID, &m.TaskID, &m.ActivityType, &m.Metric, &m.Multiplier, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to create mapping: %w", err)
	}
	return m, nil
}

func (s *FitnessService) DeleteMapping(ctx context.Context, clerkID string, mappingID uuid.UUID) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	DELETE FROM fitness_task_mappings m
	USING tasks t, challenges c
	WHERE m.id = $1 AND t.id = m.task_id AND c.id = t.challenge_id AND c.user_id = $2
	`
	result, err := s.db.Exec(ctx, query, mappingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mapping not found")
	}
	return nil
}

func (s *FitnessService) ListMappings(ctx context.Context, challengeID uuid.UUID) ([]*fitness.TaskMapping, error) {
	query := `
	SELECT m.id, m.task_id, m.activity_type, m.metric, m.multiplier, m.created_at
	FROM fitness_task_mappings m
	INNER JOIN tasks t ON t.id = m.task_id
	WHERE t.challenge_id = $1
	`
	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*fitness.TaskMapping
	for rows.Next() {
		m := &fitness.TaskMapping{}
		if err := rows.Scan(&m.ID, &m.TaskID, &m.ActivityType, &m.Metric, &m.Multiplier, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (s *FitnessService) activeProvider(ctx context.Context, userID uuid.UUID) (*fitness.Provider, error) {
	p := &fitness.Provider{}
	query := `
	SELECT id, user_id, provider, access_token, refresh_token, token_expires_at, athlete_id, connected_at, last_sync_at, is_active
	FROM fitness_providers
	WHERE user_id = $1 AND provider = 'strava' AND is_active = true
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Provider, &p.AccessToken, &p.RefreshToken, &p.TokenExpiresAt, &p.AthleteID, &p.ConnectedAt, &p.LastSyncAt, &p.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no fitness provider connected")
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return p, nil
}

func (s *FitnessService) userLocation(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	var timezone string
	err := s.db.QueryRow(ctx, `SELECT timezone FROM profiles WHERE id = $1`, userID).Scan(&timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to get user timezone: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC, nil
	}
	return loc, nil
}

func (s *FitnessService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found")
	}
	return userID, nil
}
