package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"seventyFiveAPI/internal/calendar"
	"seventyFiveAPI/internal/progress"
	"seventyFiveAPI/utils"
)

// ProgressService glues the challenge/entry reads to the pure progress and
// calendar computations. "Today" is always resolved in the viewer's stored
// profile timezone, one policy everywhere.
type ProgressService struct {
	challenges *ChallengeService
	entries    *EntryService
	profiles   *ProfileService
}

func NewProgressService(challenges *ChallengeService, entries *EntryService, profiles *ProfileService) *ProgressService {
	return &ProgressService{
		challenges: challenges,
		entries:    entries,
		profiles:   profiles,
	}
}

func (s *ProgressService) GetStats(ctx context.Context, clerkID string, challengeID uuid.UUID) (*progress.Stats, error) {
	ch, err := s.challenges.GetChallenge(ctx, clerkID, challengeID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListEntries(ctx, clerkID, challengeID)
	if err != nil {
		return nil, err
	}
	today, err := s.todayFor(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	return progress.ComputeStats(&ch.Challenge, ch.Tasks, entries, today), nil
}

func (s *ProgressService) GetCalendar(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]*calendar.Day, error) {
	ch, err := s.challenges.GetChallenge(ctx, clerkID, challengeID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListEntries(ctx, clerkID, challengeID)
	if err != nil {
		return nil, err
	}
	today, err := s.todayFor(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var completedDates []time.Time
	for _, e := range entries {
		if e.IsComplete {
			completedDates = append(completedDates, e.Date)
		}
	}

	return calendar.BuildChallengeCalendar(ch.StartDate, ch.DurationDays, completedDates, today), nil
}

func (s *ProgressService) todayFor(ctx context.Context, clerkID string) (time.Time, error) {
	p, err := s.profiles.GetProfileByClerkID(ctx, clerkID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve viewer timezone: %w", err)
	}
	return utils.TodayIn(p.Timezone), nil
}
