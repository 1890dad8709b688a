package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/webhooks/stripe", HandleStripeWebhook)
	return app
}

func signPayload(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookTestApp()

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStripeWebhookInvalidSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookTestApp()

	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signPayload("whsec_wrong_secret", time.Now().Unix(), payload))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStripeWebhookTamperedPayload(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookTestApp()

	signed := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	tampered := []byte(`{"id":"evt_1","type":"customer.subscription.deleted"}`)
	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader(tampered))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signPayload(testWebhookSecret, time.Now().Unix(), signed))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStripeWebhookUnrecognizedTypeAcknowledgedWithoutLedgerWrite(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookTestApp()

	// No database is wired in this test; a ledger write attempt would fail
	// loudly instead of returning the ignored acknowledgement.
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{}}}`)
	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signPayload(testWebhookSecret, time.Now().Unix(), payload))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["received"])
	assert.Equal(t, true, body["ignored"])
}

func TestStripeWebhookStaleTimestamp(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)
	app := newWebhookTestApp()

	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	stale := time.Now().Add(-time.Hour).Unix()
	req := httptest.NewRequest("POST", "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signPayload(testWebhookSecret, stale, payload))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
