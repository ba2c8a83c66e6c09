package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	qrcode "github.com/skip2/go-qrcode"

	"seventyFiveAPI/internal/streak"
	"seventyFiveAPI/internal/types/challenge"
	"seventyFiveAPI/internal/types/task"
	"seventyFiveAPI/utils"
)

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.ChallengeWithTasks, error) {
	ownerID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, fmt.Errorf("challenge name is required")
	}
	if req.DurationDays < 1 {
		return nil, fmt.Errorf("duration must be at least 1 day")
	}
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	inviteToken, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ch := &challenge.ChallengeWithTasks{}
	query := `
	INSERT INTO challenges (id, user_id, name, start_date, duration_days, invite_token, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, user_id, name, start_date, duration_days, invite_token, created_at
	`
	err = tx.QueryRow(ctx, query, uuid.New(), ownerID, req.Name, startDate, req.DurationDays, inviteToken).Scan(
		&ch.ID, &ch.OwnerID, &ch.Name, &ch.StartDate, &ch.DurationDays, &ch.InviteToken, &ch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	taskQuery := `
	INSERT INTO tasks (id, challenge_id, label, type, target_value, unit, is_required, position, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING id, challenge_id, label, type, target_value, unit, is_required, position, created_at
	`
	for _, tr := range req.Tasks {
		if tr.Type != task.TypeCheckbox && tr.Type != task.TypeNumber {
			return nil, fmt.Errorf("invalid task type %q", tr.Type)
		}
		t := &task.Task{}
		err = tx.QueryRow(ctx, taskQuery,
			uuid.New(), ch.ID, tr.Label, tr.Type, tr.TargetValue, tr.Unit, tr.IsRequired, tr.Position,
		).Scan(&t.ID, &t.ChallengeID, &t.Label, &t.Type, &t.TargetValue, &t.Unit, &t.IsRequired, &t.Position, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		ch.Tasks = append(ch.Tasks, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}

	log.Printf("CreateChallenge: %s created challenge %s (%d days, %d tasks)", clerkID, ch.ID, ch.DurationDays, len(ch.Tasks))
	return ch, nil
}

// GetChallenges returns the challenges the user owns followed by the ones
// they joined via invite.
func (s *ChallengeService) GetChallenges(ctx context.Context, clerkID string) ([]*challenge.ChallengeWithTasks, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT c.id, c.user_id, c.name, c.start_date, c.duration_days, c.invite_token, c.created_at
	FROM challenges c
	WHERE c.user_id = $1
	UNION ALL
	SELECT c.id, c.user_id, c.name, c.start_date, c.duration_days, c.invite_token, c.created_at
	FROM challenges c
	INNER JOIN challenge_members cm ON cm.challenge_id = c.id AND cm.user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.ChallengeWithTasks
	for rows.Next() {
		ch := &challenge.ChallengeWithTasks{}
		if err := rows.Scan(&ch.ID, &ch.OwnerID, &ch.Name, &ch.StartDate, &ch.DurationDays, &ch.InviteToken, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, ch := range challenges {
		tasks, err := s.loadTasks(ctx, ch.ID)
		if err != nil {
			return nil, err
		}
		ch.Tasks = tasks
	}

	if challenges == nil {
		challenges = []*challenge.ChallengeWithTasks{}
	}
	return challenges, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) (*challenge.ChallengeWithTasks, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	ch := &challenge.ChallengeWithTasks{}
	query := `
	SELECT id, user_id, name, start_date, duration_days, invite_token, created_at
	FROM challenges
	WHERE id = $1
	`
	err = s.db.QueryRow(ctx, query, challengeID).Scan(
		&ch.ID, &ch.OwnerID, &ch.Name, &ch.StartDate, &ch.DurationDays, &ch.InviteToken, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found")
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if ch.OwnerID != userID {
		isMember, err := s.isMember(ctx, challengeID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("challenge not found")
		}
	}

	ch.Tasks, err = s.loadTasks(ctx, ch.ID)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *ChallengeService) UpdateChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID, req *challenge.UpdateChallengeRequest) (*challenge.Challenge, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.DurationDays != 0 && req.DurationDays < 1 {
		return nil, fmt.Errorf("duration must be at least 1 day")
	}

	query := `
	UPDATE challenges
	SET
		name = COALESCE(NULLIF($3, ''), name),
		duration_days = CASE WHEN $4 > 0 THEN $4 ELSE duration_days END
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, name, start_date, duration_days, invite_token, created_at
	`

	ch := &challenge.Challenge{}
	err = s.db.QueryRow(ctx, query, challengeID, userID, req.Name, req.DurationDays).Scan(
		&ch.ID, &ch.OwnerID, &ch.Name, &ch.StartDate, &ch.DurationDays, &ch.InviteToken, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found")
		}
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return ch, nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1 AND user_id = $2`, challengeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("challenge not found")
	}
	return nil
}

func (s *ChallengeService) AddTask(ctx context.Context, clerkID string, challengeID uuid.UUID, req *task.CreateTaskRequest) (*task.Task, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, challengeID, userID); err != nil {
		return nil, err
	}
	if req.Type != task.TypeCheckbox && req.Type != task.TypeNumber {
		return nil, fmt.Errorf("invalid task type %q", req.Type)
	}

	query := `
	INSERT INTO tasks (id, challenge_id, label, type, target_value, unit, is_required, position, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING id, challenge_id, label, type, target_value, unit, is_required, position, created_at
	`
	t := &task.Task{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), challengeID, req.Label, req.Type, req.TargetValue, req.Unit, req.IsRequired, req.Position,
	).Scan(&t.ID, &t.ChallengeID, &t.Label, &t.Type, &t.TargetValue, &t.Unit, &t.IsRequired, &t.Position, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (s *ChallengeService) UpdateTask(ctx context.Context, clerkID string, taskID uuid.UUID, req *task.UpdateTaskRequest) (*task.Task, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE tasks t
	SET
		label = COALESCE(NULLIF($3, ''), t.label),
		target_value = COALESCE($4, t.target_value),
		unit = COALESCE($5, t.unit),
		is_required = COALESCE($6, t.is_required),
		position = COALESCE($7, t.position)
	FROM challenges c
	WHERE t.id = $1 AND c.id = t.challenge_id AND c.user_id = $2
	RETURNING t.id, t.challenge_id, t.label, t.type, t.target_value, t.unit, t.is_required, t.position, t.created_at
	`

	t := &task.Task{}
	err = s.db.QueryRow(ctx, query, taskID, userID, req.Label, req.TargetValue, req.Unit, req.IsRequired, req.Position).Scan(
		&t.ID, &t.ChallengeID, &t.Label, &t.Type, &t.TargetValue, &t.Unit, &t.IsRequired, &t.Position, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task; its completions go with it via cascade.
func (s *ChallengeService) DeleteTask(ctx context.Context, clerkID string, taskID uuid.UUID) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	query := `
	DELETE FROM tasks t
	USING challenges c
	WHERE t.id = $1 AND c.id = t.challenge_id AND c.user_id = $2
	`
	result, err := s.db.Exec(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("task not found")
	}
	return nil
}

// GetInvite returns the current invite token plus a scannable QR code of the
// join URL for the share sheet.
func (s *ChallengeService) GetInvite(ctx context.Context, clerkID string, challengeID uuid.UUID, appBaseURL string) (*challenge.InviteResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	var token string
	err = s.db.QueryRow(ctx, `SELECT invite_token FROM challenges WHERE id = $1`, challengeID).Scan(&token)
	if err != nil {
		return nil, fmt.Errorf("failed to read invite token: %w", err)
	}

	return buildInviteResponse(token, appBaseURL)
}

// RegenerateInviteToken replaces the stored token, immediately invalidating
// the previous one.
func (s *ChallengeService) RegenerateInviteToken(ctx context.Context, clerkID string, challengeID uuid.UUID, appBaseURL string) (*challenge.InviteResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	newToken, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	result, err := s.db.Exec(ctx, `UPDATE challenges SET invite_token = $2 WHERE id = $1`, challengeID, newToken)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate invite token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("challenge not found")
	}

	log.Printf("RegenerateInviteToken: challenge %s got a new invite token", challengeID)
	return buildInviteResponse(newToken, appBaseURL)
}

// JoinByToken adds the caller as a member of the challenge behind the
// invite token. Owners and existing members are rejected.
func (s *ChallengeService) JoinByToken(ctx context.Context, clerkID string, inviteToken string) (uuid.UUID, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return uuid.Nil, err
	}

	var challengeID, ownerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id, user_id FROM challenges WHERE invite_token = $1`, inviteToken).Scan(&challengeID, &ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("invalid invite token")
		}
		return uuid.Nil, fmt.Errorf("failed to look up invite: %w", err)
	}

	if ownerID == userID {
		return uuid.Nil, fmt.Errorf("you are the owner of this challenge")
	}

	isMember, err := s.isMember(ctx, challengeID, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if isMember {
		return uuid.Nil, fmt.Errorf("you have already joined this challenge")
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO challenge_members (id, challenge_id, user_id, joined_at) VALUES ($1, $2, $3, NOW())`,
		uuid.New(), challengeID, userID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to join challenge: %w", err)
	}

	log.Printf("JoinByToken: %s joined challenge %s", clerkID, challengeID)
	return challengeID, nil
}

// GetMemberProgress builds the friends/leaderboard view: owner plus every
// member, with completed days and live streak, best first.
func (s *ChallengeService) GetMemberProgress(ctx context.Context, clerkID string, challengeID uuid.UUID, today time.Time) ([]*challenge.MemberProgress, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var ownerID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT user_id FROM challenges WHERE id = $1`, challengeID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found")
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if ownerID != userID {
		isMember, err := s.isMember(ctx, challengeID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("challenge not found")
		}
	}

	query := `
	SELECT p.id, p.display_name, c.created_at
	FROM challenges c
	INNER JOIN profiles p ON p.id = c.user_id
	WHERE c.id = $1
	UNION ALL
	SELECT p.id, p.display_name, cm.joined_at
	FROM challenge_members cm
	INNER JOIN profiles p ON p.id = cm.user_id
	WHERE cm.challenge_id = $1
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	var members []*challenge.MemberProgress
	for rows.Next() {
		m := &challenge.MemberProgress{}
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// One batched query for every member's completed dates.
	entryRows, err := s.db.Query(ctx,
		`SELECT user_id, date FROM daily_entries WHERE challenge_id = $1 AND is_complete = true`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member entries: %w", err)
	}
	defer entryRows.Close()

	completedByUser := make(map[uuid.UUID][]time.Time)
	for entryRows.Next() {
		var uid uuid.UUID
		var date time.Time
		if err := entryRows.Scan(&uid, &date); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		completedByUser[uid] = append(completedByUser[uid], date)
	}
	if err = entryRows.Err(); err != nil {
		return nil, err
	}

	for _, m := range members {
		dates := completedByUser[m.UserID]
		m.CompletedDays = len(dates)
		m.CurrentStreak = streak.Calculate(dates, today).Current
	}

	if members == nil {
		members = []*challenge.MemberProgress{}
	}
	return members, nil
}

func (s *ChallengeService) loadTasks(ctx context.Context, challengeID uuid.UUID) ([]*task.Task, error) {
	query := `
	SELECT id, challenge_id, label, type, target_value, unit, is_required, position, created_at
	FROM tasks
	WHERE challenge_id = $1
	ORDER BY position, created_at
	`
	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t := &task.Task{}
		if err := rows.Scan(&t.ID, &t.ChallengeID, &t.Label, &t.Type, &t.TargetValue, &t.Unit, &t.IsRequired, &t.Position, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if tasks == nil {
		tasks = []*task.Task{}
	}
	return tasks, nil
}

func (s *ChallengeService) isMember(ctx context.Context, challengeID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM challenge_members WHERE challenge_id = $1 AND user_id = $2)`,
		challengeID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

func (s *ChallengeService) requireOwner(ctx context.Context, challengeID, userID uuid.UUID) error {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM challenges WHERE id = $1`, challengeID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("challenge not found")
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}
	if ownerID != userID {
		return fmt.Errorf("only the challenge owner can do that")
	}
	return nil
}

func (s *ChallengeService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found")
	}
	return userID, nil
}

func buildInviteResponse(token string, appBaseURL string) (*challenge.InviteResponse, error) {
	joinURL := fmt.Sprintf("%s/join/%s", appBaseURL, token)

	pngBytes, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &challenge.InviteResponse{
		InviteToken:  token,
		JoinURL:      joinURL,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}
