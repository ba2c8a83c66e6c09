package fitness

import (
	"time"

	"github.com/google/uuid"
)

type Metric string

const (
	MetricDistance Metric = "distance"
	MetricDuration Metric = "duration"
	MetricSteps    Metric = "steps"
	MetricCalories Metric = "calories"
)

type Provider struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Provider       string     `json:"provider" db:"provider"`
	AccessToken    string     `json:"-" db:"access_token"`
	RefreshToken   string     `json:"-" db:"refresh_token"`
	TokenExpiresAt *time.Time `json:"token_expires_at" db:"token_expires_at"`
	AthleteID      *string    `json:"athlete_id" db:"athlete_id"`
	ConnectedAt    time.Time  `json:"connected_at" db:"connected_at"`
	LastSyncAt     *time.Time `json:"last_sync_at" db:"last_sync_at"`
	IsActive       bool       `json:"is_active" db:"is_active"`
}

type Activity struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	Provider           string    `json:"provider" db:"provider"`
	ProviderActivityID string    `json:"provider_activity_id" db:"provider_activity_id"`
	ActivityType       string    `json:"activity_type" db:"activity_type"`
	Name               string    `json:"name" db:"name"`
	StartDate          time.Time `json:"start_date" db:"start_date"`
	DurationSeconds    float64   `json:"duration_seconds" db:"duration_seconds"`
	DistanceMeters     float64   `json:"distance_meters" db:"distance_meters"`
	CaloriesBurned     float64   `json:"calories_burned" db:"calories_burned"`
	StepsCount         float64   `json:"steps_count" db:"steps_count"`
	RawData            []byte    `json:"-" db:"raw_data"`
}

// TaskMapping is an explicit task -> activity metric link. When a challenge
// has mappings the auto-matcher uses them instead of label heuristics.
type TaskMapping struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TaskID       uuid.UUID `json:"task_id" db:"task_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Metric       Metric    `json:"metric" db:"metric"`
	Multiplier   float64   `json:"multiplier" db:"multiplier"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type CreateMappingRequest struct {
	TaskID       uuid.UUID `json:"task_id"`
	ActivityType string    `json:"activity_type"`
	Metric       Metric    `json:"metric"`
	Multiplier   float64   `json:"multiplier"`
}

type ConnectionStatus struct {
	Connected  bool       `json:"connected"`
	Provider   string     `json:"provider,omitempty"`
	AthleteID  *string    `json:"athlete_id,omitempty"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

type SyncResult struct {
	UserID           uuid.UUID `json:"user_id"`
	Success          bool      `json:"success"`
	ActivitiesSynced int       `json:"activities_synced"`
	Error            string    `json:"error,omitempty"`
}
