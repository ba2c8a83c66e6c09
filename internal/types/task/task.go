package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TypeCheckbox TaskType = "checkbox"
	TypeNumber   TaskType = "number"
)

type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	Label       string    `json:"label" db:"label"`
	Type        TaskType  `json:"type" db:"type"`
	TargetValue float64   `json:"target_value" db:"target_value"`
	Unit        *string   `json:"unit" db:"unit"`
	IsRequired  bool      `json:"is_required" db:"is_required"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateTaskRequest struct {
	Label       string   `json:"label"`
	Type        TaskType `json:"type"`
	TargetValue float64  `json:"target_value"`
	Unit        *string  `json:"unit"`
	IsRequired  bool     `json:"is_required"`
	Position    int      `json:"position"`
}

type UpdateTaskRequest struct {
	Label       string   `json:"label"`
	TargetValue *float64 `json:"target_value"`
	Unit        *string  `json:"unit"`
	IsRequired  *bool    `json:"is_required"`
	Position    *int     `json:"position"`
}
