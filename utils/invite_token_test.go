package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateInviteTokenShape(t *testing.T) {
	token, err := GenerateInviteToken()
	require.NoError(t, err)
	require.Len(t, token, 12)
	for _, c := range token {
		require.True(t, strings.ContainsRune(inviteTokenAlphabet, c), "unexpected character %q", c)
	}
}

func TestGenerateInviteTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, err := GenerateInviteToken()
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
