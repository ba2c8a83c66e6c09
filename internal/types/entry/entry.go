package entry

import (
	"time"

	"github.com/google/uuid"
)

type DailyEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Date        time.Time `json:"date" db:"date"`
	Note        *string   `json:"note" db:"note"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	IsComplete  bool      `json:"is_complete" db:"is_complete"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type TaskCompletion struct {
	ID           uuid.UUID `json:"id" db:"id"`
	DailyEntryID uuid.UUID `json:"daily_entry_id" db:"daily_entry_id"`
	TaskID       uuid.UUID `json:"task_id" db:"task_id"`
	Value        float64   `json:"value" db:"value"`
	IsCompleted  bool      `json:"is_completed" db:"is_completed"`
}

type EntryWithCompletions struct {
	DailyEntry
	Completions []*TaskCompletion `json:"task_completions"`
}

type CompletionInput struct {
	TaskID      uuid.UUID `json:"task_id"`
	Value       float64   `json:"value"`
	IsCompleted bool      `json:"is_completed"`
}

// SaveEntryRequest is the check-in form payload. The completion set always
// fully replaces whatever was saved before for that day.
type SaveEntryRequest struct {
	Note        *string            `json:"note"`
	ImageURL    *string            `json:"image_url"`
	Completions []*CompletionInput `json:"task_completions"`
}
