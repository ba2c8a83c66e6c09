package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/task"
)

type EntryService struct {
	db *pgxpool.Pool
}

func NewEntryService(db *pgxpool.Pool) *EntryService {
	return &EntryService{db: db}
}

// GetEntry returns the day's check-in, or nil when the user has not checked
// in yet. Missing is the normal empty state, not an error.
func (s *EntryService) GetEntry(ctx context.Context, clerkID string, challengeID uuid.UUID, date time.Time) (*entry.EntryWithCompletions, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	e := &entry.EntryWithCompletions{}
	query := `
	SELECT id, challenge_id, user_id, date, note, image_url, is_complete, created_at
	FROM daily_entries
	WHERE challenge_id = $1 AND user_id = $2 AND date = $3
	`
	err = s.db.QueryRow(ctx, query, challengeID, userID, date).Scan(
		&e.ID, &e.ChallengeID, &e.UserID, &e.Date, &e.Note, &e.ImageURL, &e.IsComplete, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	e.Completions, err = s.loadCompletions(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SaveEntry is the check-in save: the entry row is upserted on
// (challenge, user, date) and the completion set is fully replaced, all in
// one transaction so a reader never sees the half-written state.
func (s *EntryService) SaveEntry(ctx context.Context, clerkID string, challengeID uuid.UUID, date time.Time, req *entry.SaveEntryRequest) (*entry.EntryWithCompletions, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMembership(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	tasks, err := s.loadChallengeTasks(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	completions := normalizeCompletions(req.Completions, tasks)
	isComplete := allRequiredCompleted(tasks, completions)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	e := &entry.EntryWithCompletions{}
	upsert := `
	INSERT INTO daily_entries (id, challenge_id, user_id, date, note, image_url, is_complete, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (challenge_id, user_id, date)
	DO UPDATE SET note = $5, image_url = $6, is_complete = $7
	RETURNING id, challenge_id, user_id, date, note, image_url, is_complete, created_at
	`
	err = tx.QueryRow(ctx, upsert, uuid.New(), challengeID, userID, date, req.Note, req.ImageURL, isComplete).Scan(
		&e.ID, &e.ChallengeID, &e.UserID, &e.Date, &e.Note, &e.ImageURL, &e.IsComplete, &e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	if _, err = tx.Exec(ctx, `DELETE FROM task_completions WHERE daily_entry_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to clear completions: %w", err)
	}

	insert := `
	INSERT INTO task_completions (id, daily_entry_id, task_id, value, is_completed)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, daily_entry_id, task_id, value, is_completed
	`
	for _, c := range completions {
		tc := &entry.TaskCompletion{}
		err = tx.QueryRow(ctx, insert, uuid.New(), e.ID, c.TaskID, c.Value, c.IsCompleted).Scan(
			&tc.ID, &tc.DailyEntryID, &tc.TaskID, &tc.Value, &tc.IsCompleted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save completion: %w", err)
		}
		e.Completions = append(e.Completions, tc)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	log.Printf("SaveEntry: %s saved %s for challenge %s (complete=%t)", clerkID, date.Format("2006-01-02"), challengeID, isComplete)
	return e, nil
}

// ListEntries returns every entry the user has for a challenge, completions
// included, oldest first.
func (s *EntryService) ListEntries(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]*entry.EntryWithCompletions, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, challengeID, userID); err != nil {
		return nil, err
	}

	query := `
	SELECT id, challenge_id, user_id, date, note, image_url, is_complete, created_at
	FROM daily_entries
	WHERE challenge_id = $1 AND user_id = $2
	ORDER BY date
	`
	rows, err := s.db.Query(ctx, query, challengeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.EntryWithCompletions
	for rows.Next() {
		e := &entry.EntryWithCompletions{}
		if err := rows.Scan(&e.ID, &e.ChallengeID, &e.UserID, &e.Date, &e.Note, &e.ImageURL, &e.IsComplete, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		e.Completions, err = s.loadCompletions(ctx, e.ID)
		if err != nil {
			return nil, err
		}
	}

	if entries == nil {
		entries = []*entry.EntryWithCompletions{}
	}
	return entries, nil
}

func (s *EntryService) loadCompletions(ctx context.Context, entryID uuid.UUID) ([]*entry.TaskCompletion, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, daily_entry_id, task_id, value, is_completed FROM task_completions WHERE daily_entry_id = $1`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var completions []*entry.TaskCompletion
	for rows.Next() {
		tc := &entry.TaskCompletion{}
		if err := rows.Scan(&tc.ID, &tc.DailyEntryID, &tc.TaskID, &tc.Value, &tc.IsCompleted); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if completions == nil {
		completions = []*entry.TaskCompletion{}
	}
	return completions, nil
}

func (s *EntryService) loadChallengeTasks(ctx context.Context, challengeID uuid.UUID) ([]*task.Task, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, challenge_id, label, type, target_value, unit, is_required, position, created_at FROM tasks WHERE challenge_id = $1`,
		challengeID,
	)
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
	return tasks, rows.Err()
}

// requireMembership verifies the challenge exists and the user is its owner
// or a joined member. Outsiders get the same "not found" as a missing
// challenge so the routes do not leak which IDs exist.
func (s *EntryService) requireMembership(ctx context.Context, challengeID, userID uuid.UUID) error {
	var ownerID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT user_id FROM challenges WHERE id = $1`, challengeID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("challenge not found")
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}
	if ownerID == userID {
		return nil
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM challenge_members WHERE challenge_id = $1 AND user_id = $2)`,
		challengeID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		return fmt.Errorf("challenge not found")
	}
	return nil
}

func (s *EntryService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM profiles WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found")
	}
	return userID, nil
}

// normalizeCompletions enforces the write-time invariants: checkbox values
// collapse to 0/1 with the flag mirroring the box, numeric completion is
// recomputed from value vs target, and completions for unknown tasks are
// dropped.
func normalizeCompletions(inputs []*entry.CompletionInput, tasks []*task.Task) []*entry.CompletionInput {
	byID := make(map[uuid.UUID]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	out := make([]*entry.CompletionInput, 0, len(inputs))
	for _, in := range inputs {
		t, ok := byID[in.TaskID]
		if !ok {
			continue
		}

		c := &entry.CompletionInput{TaskID: in.TaskID}
		switch t.Type {
		case task.TypeCheckbox:
			if in.Value != 0 || in.IsCompleted {
				c.Value = 1
				c.IsCompleted = true
			}
		case task.TypeNumber:
			c.Value = in.Value
			c.IsCompleted = in.Value >= t.TargetValue
		}
		out = append(out, c)
	}
	return out
}

func allRequiredCompleted(tasks []*task.Task, completions []*entry.CompletionInput) bool {
	done := make(map[uuid.UUID]bool, len(completions))
	for _, c := range completions {
		if c.IsCompleted {
			done[c.TaskID] = true
		}
	}
	for _, t := range tasks {
		if t.IsRequired && !done[t.ID] {
			return false
		}
	}
	return true
}
