package clerk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimaryEmail(t *testing.T) {
	u := &UserData{
		PrimaryEmailAddressID: "email_2",
		EmailAddresses: []EmailAddress{
			{ID: "email_1", EmailAddress: "old@example.com"},
			{ID: "email_2", EmailAddress: "primary@example.com"},
		},
	}
	require.Equal(t, "primary@example.com", u.PrimaryEmail())
}

func TestPrimaryEmailFallsBackToFirst(t *testing.T) {
	u := &UserData{
		PrimaryEmailAddressID: "email_missing",
		EmailAddresses: []EmailAddress{
			{ID: "email_1", EmailAddress: "only@example.com"},
		},
	}
	require.Equal(t, "only@example.com", u.PrimaryEmail())
	require.Equal(t, "", (&UserData{}).PrimaryEmail())
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "someuser", (&UserData{Username: "someuser", FirstName: "A"}).DisplayName())
	require.Equal(t, "Jamie Doe", (&UserData{FirstName: "Jamie", LastName: "Doe"}).DisplayName())
	require.Equal(t, "Jamie", (&UserData{FirstName: "Jamie"}).DisplayName())
	require.Equal(t, "", (&UserData{}).DisplayName())
}
