package profile

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ClerkID         string    `json:"clerk_id" db:"clerk_id"`
	Email           string    `json:"email" db:"email"`
	DisplayName     string    `json:"display_name" db:"display_name"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	Timezone        string    `json:"timezone" db:"timezone"`
	ReminderEnabled bool      `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderTime    string    `json:"reminder_time" db:"reminder_time"` // HH:MM, profile-local
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type CreateProfileRequest struct {
	ClerkID     string
	Email       string
	DisplayName string
	ImageURL    string
}

type DeviceToken struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Token        string    `json:"token" db:"token"`
	Platform     string    `json:"platform" db:"platform"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

type UpdateProfileRequest struct {
	DisplayName     string `json:"display_name"`
	ImageURL        string `json:"image_url"`
	Timezone        string `json:"timezone"`
	ReminderEnabled *bool  `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time"`
}
