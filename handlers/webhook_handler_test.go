package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func signPayload(secret, svixID, svixTimestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%s.%s.%s", svixID, svixTimestamp, string(body))))
	return "v1," + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignatureValid(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{"type":"user.created"}`)
	r := httptest.NewRequest("POST", "/webhooks/clerk", bytes.NewReader(body))
	r.Header.Set("svix-id", "msg_1")
	r.Header.Set("svix-timestamp", "1700000000")
	r.Header.Set("svix-signature", signPayload("whsec_test", "msg_1", "1700000000", body))

	require.True(t, verifyWebhookSignature(r, body))
}

func TestVerifyWebhookSignatureTampered(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{"type":"user.created"}`)
	r := httptest.NewRequest("POST", "/webhooks/clerk", bytes.NewReader(body))
	r.Header.Set("svix-id", "msg_1")
	r.Header.Set("svix-timestamp", "1700000000")
	r.Header.Set("svix-signature", signPayload("whsec_test", "msg_1", "1700000000", []byte(`{"type":"user.deleted"}`)))

	require.False(t, verifyWebhookSignature(r, body))
}

func TestVerifyWebhookSignatureMissingHeaders(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	body := []byte(`{}`)
	r := httptest.NewRequest("POST", "/webhooks/clerk", bytes.NewReader(body))
	require.False(t, verifyWebhookSignature(r, body))
}

func TestVerifyWebhookSignatureSkippedWithoutSecret(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "")

	body := []byte(`{}`)
	r := httptest.NewRequest("POST", "/webhooks/clerk", bytes.NewReader(body))
	require.True(t, verifyWebhookSignature(r, body))
}
