package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seventyFiveAPI/internal/types/profile"
)

type ProfileService struct {
	db *pgxpool.Pool
}

func NewProfileService(db *pgxpool.Pool) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) CreateProfile(ctx context.Context, req *profile.CreateProfileRequest) (*profile.Profile, error) {
	p := &profile.Profile{
		ID:           uuid.New(),
		ClerkID:      req.ClerkID,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		ImageURL:     req.ImageURL,
		Timezone:     "UTC",
		ReminderTime: "20:00",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
	INSERT INTO profiles (id, clerk_id, email, display_name, image_url, timezone, reminder_enabled, reminder_time, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8, $9)
	RETURNING id, clerk_id, email, display_name, image_url, timezone, reminder_enabled, reminder_time, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		p.ID, p.ClerkID, p.Email, p.DisplayName, p.ImageURL, p.Timezone, p.ReminderTime, p.CreatedAt, p.UpdatedAt,
	).Scan(
		&p.ID, &p.ClerkID, &p.Email, &p.DisplayName, &p.ImageURL, &p.Timezone,
		&p.ReminderEnabled, &p.ReminderTime, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error) {
	query := `
	SELECT id, clerk_id, email, display_name, image_url, timezone, reminder_enabled, reminder_time, created_at, updated_at
	FROM profiles
	WHERE clerk_id = $1
	`

	p := &profile.Profile{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&p.ID, &p.ClerkID, &p.Email, &p.DisplayName, &p.ImageURL, &p.Timezone,
		&p.ReminderEnabled, &p.ReminderTime, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *profile.UpdateProfileRequest) (*profile.Profile, error) {
	query := `
	UPDATE profiles
	SET
		display_name = COALESCE(NULLIF($2, ''), display_name),
		image_url = COALESCE(NULLIF($3, ''), image_url),
		timezone = COALESCE(NULLIF($4, ''), timezone),
		reminder_enabled = COALESCE($5, reminder_enabled),
		reminder_time = COALESCE(NULLIF($6, ''), reminder_time),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, display_name, image_url, timezone, reminder_enabled, reminder_time, created_at, updated_at
	`

	p := &profile.Profile{}
	err := s.db.QueryRow(ctx, query,
		clerkID, req.DisplayName, req.ImageURL, req.Timezone, req.ReminderEnabled, req.ReminderTime,
	).Scan(
		&p.ID, &p.ClerkID, &p.Email, &p.DisplayName, &p.ImageURL, &p.Timezone,
		&p.ReminderEnabled, &p.ReminderTime, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return p, nil
}

func (s *ProfileService) DeleteProfileByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found")
	}
	return nil
}

func (s *ProfileService) UpdateEmail(ctx context.Context, clerkID string, email string) error {
	_, err := s.db.Exec(ctx, `UPDATE profiles SET email = $2, updated_at = NOW() WHERE clerk_id = $1`, clerkID, email)
	return err
}

// RegisterDevice stores a push token so the reminder worker can reach this
// user. Re-registering the same token just bumps its timestamp.
func (s *ProfileService) RegisterDevice(ctx context.Context, clerkID string, token string, platform string) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO reminder_devices (user_id, token, platform, registered_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, token)
	DO UPDATE SET platform = $3, registered_at = NOW()
	`

	_, err = s.db.Exec(ctx, query, userID, token, platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *ProfileService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found")
	}
	return userID, nil
}
