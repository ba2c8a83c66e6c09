package challenge

import (
	"time"

	"github.com/google/uuid"

	"seventyFiveAPI/internal/types/task"
)

type Challenge struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"owner_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	StartDate    time.Time `json:"start_date" db:"start_date"`
	DurationDays int       `json:"duration_days" db:"duration_days"`
	InviteToken  string    `json:"invite_token" db:"invite_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type ChallengeWithTasks struct {
	Challenge
	Tasks []*task.Task `json:"tasks"`
}

type CreateChallengeRequest struct {
	Name         string                    `json:"name"`
	StartDate    string                    `json:"start_date"` // YYYY-MM-DD
	DurationDays int                       `json:"duration_days"`
	Tasks        []*task.CreateTaskRequest `json:"tasks"`
}

type UpdateChallengeRequest struct {
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
}

type Member struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

// MemberProgress is the friends/leaderboard row: one challenge member with
// their completed-day count and live streak.
type MemberProgress struct {
	UserID        uuid.UUID `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	CompletedDays int       `json:"completed_days"`
	CurrentStreak int       `json:"current_streak"`
	JoinedAt      time.Time `json:"joined_at"`
}

type InviteResponse struct {
	InviteToken  string `json:"invite_token"`
	JoinURL      string `json:"join_url"`
	QrCodeBase64 string `json:"qr_code_base64"`
}
