package utils

import (
	"crypto/rand"
	"math/big"
)

const inviteTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const inviteTokenLength = 12

// GenerateInviteToken returns a short opaque share token. Regenerating a
// challenge's token replaces the old one, so there is only ever one live
// token per challenge.
func GenerateInviteToken() (string, error) {
	token := make([]byte, inviteTokenLength)
	max := big.NewInt(int64(len(inviteTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		token[i] = inviteTokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
