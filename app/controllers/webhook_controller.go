package controllers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/revitalife/revitalife-shop/internal/pkg/database"
	"github.com/revitalife/revitalife-shop/internal/pkg/env"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

// HandleStripeWebhook verifies and processes processor webhook
// deliveries. Signature failures are rejected with 400 before anything is
// written; once the signature checks out the delivery is recorded and
// acknowledged with 200 even when the handler fails, so the processor
// does not retry events we have already stored.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	sigHeader := strings.TrimSpace(c.Get("Stripe-Signature"))
	if sigHeader == "" {
		return jsonError(c, fiber.StatusBadRequest, "Missing signature", nil)
	}

	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	event, err := webhook.ConstructEventWithOptions(rawBody, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid signature", err)
	}

	// Only recognized types reach the ledger; everything else is
	// acknowledged without a write.
	if !payments.IsRecognizedEventType(string(event.Type)) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "ignored": true})
	}

	svc := payments.NewServiceFromDB(database.GetDB(), newProcessor())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordEvent(ctx, event.ID, string(event.Type), rawBody)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "webhook_persist_failed", err)
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	processErr := svc.ProcessEvent(ctx, string(event.Type), event.Data.Raw)
	if processErr != nil {
		log.Printf("webhook: processing %s (%s) failed: %v", event.ID, event.Type, processErr)
	}
	if err := svc.MarkProcessed(ctx, stored.ID, processErr); err != nil {
		log.Printf("webhook: marking %s processed failed: %v", event.ID, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
