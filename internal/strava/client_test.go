package strava

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthorizationURL(t *testing.T) {
	c := NewClient("client-id", "secret", "https://api.example.com/callback")
	u := c.AuthorizationURL("user_123")

	require.True(t, strings.HasPrefix(u, "https://www.strava.com/oauth/authorize"))
	require.Contains(t, u, "client_id=client-id")
	require.Contains(t, u, "state=user_123")
	require.Contains(t, u, "approval_prompt=auto")
}

func TestAthleteID(t *testing.T) {
	tok := (&oauth2.Token{AccessToken: "at"}).WithExtra(map[string]interface{}{
		"athlete": map[string]interface{}{"id": float64(1437463)},
	})
	require.Equal(t, "1437463", AthleteID(tok))
}

func TestAthleteIDMissing(t *testing.T) {
	require.Equal(t, "", AthleteID(&oauth2.Token{AccessToken: "at"}))
}

func TestListActivities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/athlete/activities", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.URL.Query().Get("after"))
		require.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 101, "name": "Morning Run", "type": "Run", "start_date": "2026-03-10T07:00:00Z", "elapsed_time": 2100, "distance": 6000, "calories": 410},
			{"id": 102, "name": "Evening Walk", "type": "Walk", "start_date": "2026-03-10T19:00:00Z", "elapsed_time": 1800, "distance": 2500}
		]`))
	}))
	defer srv.Close()

	c := NewClient("client-id", "secret", "https://api.example.com/callback")
	c.apiBaseURL = srv.URL

	activities, err := c.ListActivities(context.Background(), "test-token", time.Now().Add(-24*time.Hour), 50)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	require.Equal(t, int64(101), activities[0].ID)
	require.Equal(t, "Run", activities[0].Type)
	require.InDelta(t, 6000.0, activities[0].Distance, 0.001)
	require.InDelta(t, 410.0, activities[0].Calories, 0.001)

	require.Zero(t, activities[1].Calories)
}

func TestListActivitiesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Authorization Error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("client-id", "secret", "https://api.example.com/callback")
	c.apiBaseURL = srv.URL

	_, err := c.ListActivities(context.Background(), "expired", time.Now(), 0)
	require.Error(t, err)
}
