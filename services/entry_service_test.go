package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"seventyFiveAPI/internal/types/challenge"
	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/internal/types/profile"
	"seventyFiveAPI/internal/types/task"
	"seventyFiveAPI/tests/helpers"
)

func seedProfile(t *testing.T, profiles *ProfileService, clerkID string) {
	t.Helper()
	_, err := profiles.CreateProfile(context.Background(), &profile.CreateProfileRequest{
		ClerkID:     clerkID,
		Email:       fmt.Sprintf("test+%s@example.com", clerkID),
		DisplayName: "Test User",
	})
	require.NoError(t, err)
}

func seedChallenge(t *testing.T, challenges *ChallengeService, clerkID string) *challenge.ChallengeWithTasks {
	t.Helper()
	ch, err := challenges.CreateChallenge(context.Background(), clerkID, &challenge.CreateChallengeRequest{
		Name:         "Morning routine",
		StartDate:    time.Now().UTC().Format("2006-01-02"),
		DurationDays: 30,
		Tasks: []*task.CreateTaskRequest{
			{Label: "Meditate", Type: task.TypeCheckbox, IsRequired: true},
		},
	})
	require.NoError(t, err)
	return ch
}

func TestSaveEntryUnknownChallenge(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	profiles := NewProfileService(pool)
	entries := NewEntryService(pool)

	clerkID := "clerk_entry_missing_" + uuid.NewString()[:8]
	seedProfile(t, profiles, clerkID)

	date := time.Now().UTC().Truncate(24 * time.Hour)
	_, err := entries.SaveEntry(context.Background(), clerkID, uuid.New(), date, &entry.SaveEntryRequest{})
	require.EqualError(t, err, "challenge not found")
}

func TestSaveEntrySurvivesTaskDeletion(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	profiles := NewProfileService(pool)
	challenges := NewChallengeService(pool)
	entries := NewEntryService(pool)

	clerkID := "clerk_entry_taskless_" + uuid.NewString()[:8]
	seedProfile(t, profiles, clerkID)
	ch := seedChallenge(t, challenges, clerkID)

	// A challenge whose tasks were all removed is still a real challenge;
	// saving a check-in against it must not 404.
	require.NoError(t, challenges.DeleteTask(context.Background(), clerkID, ch.Tasks[0].ID))

	date := time.Now().UTC().Truncate(24 * time.Hour)
	saved, err := entries.SaveEntry(context.Background(), clerkID, ch.ID, date, &entry.SaveEntryRequest{})
	require.NoError(t, err)
	require.Equal(t, ch.ID, saved.ChallengeID)
	require.Empty(t, saved.Completions)
}

func TestEntryRoutesRejectNonMembers(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	profiles := NewProfileService(pool)
	challenges := NewChallengeService(pool)
	entries := NewEntryService(pool)

	ownerClerkID := "clerk_entry_owner_" + uuid.NewString()[:8]
	strangerClerkID := "clerk_entry_stranger_" + uuid.NewString()[:8]
	seedProfile(t, profiles, ownerClerkID)
	seedProfile(t, profiles, strangerClerkID)
	ch := seedChallenge(t, challenges, ownerClerkID)

	date := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := entries.SaveEntry(context.Background(), strangerClerkID, ch.ID, date, &entry.SaveEntryRequest{})
	require.EqualError(t, err, "challenge not found")

	_, err = entries.GetEntry(context.Background(), strangerClerkID, ch.ID, date)
	require.EqualError(t, err, "challenge not found")

	_, err = entries.ListEntries(context.Background(), strangerClerkID, ch.ID)
	require.EqualError(t, err, "challenge not found")
}

func TestEntryRoutesAllowJoinedMembers(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	profiles := NewProfileService(pool)
	challenges := NewChallengeService(pool)
	entries := NewEntryService(pool)

	ownerClerkID := "clerk_entry_host_" + uuid.NewString()[:8]
	memberClerkID := "clerk_entry_member_" + uuid.NewString()[:8]
	seedProfile(t, profiles, ownerClerkID)
	seedProfile(t, profiles, memberClerkID)
	ch := seedChallenge(t, challenges, ownerClerkID)

	_, err := challenges.JoinByToken(context.Background(), memberClerkID, ch.InviteToken)
	require.NoError(t, err)

	date := time.Now().UTC().Truncate(24 * time.Hour)
	saved, err := entries.SaveEntry(context.Background(), memberClerkID, ch.ID, date, &entry.SaveEntryRequest{
		Completions: []*entry.CompletionInput{
			{TaskID: ch.Tasks[0].ID, IsCompleted: true},
		},
	})
	require.NoError(t, err)
	require.True(t, saved.IsComplete)
}
