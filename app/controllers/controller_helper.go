package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/internal/pkg/env"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

var validate = validator.New()

// jsonError writes a JSON error body. The underlying error is exposed in
// dev mode only.
func jsonError(c *fiber.Ctx, status int, message string, err error) error {
	body := fiber.Map{"error": message}
	if err != nil && env.IsDev() {
		body["detail"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// newProcessor builds the Stripe-backed processor from the environment.
func newProcessor() payments.Processor {
	return payments.NewStripeProcessor(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

// checkoutConfigFromEnv collects the static price ids and redirect base.
func checkoutConfigFromEnv() payments.CheckoutConfig {
	return payments.CheckoutConfig{
		OneTimePriceID:      env.GetEnv("STRIPE_ONETIME_PRICE_ID", ""),
		SubscriptionPriceID: env.GetEnv("STRIPE_SUBSCRIPTION_PRICE_ID", ""),
		BaseURL:             env.GetEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
	}
}
