package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

type checkoutItemRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int64  `json:"quantity"`
	IsSubscription bool   `json:"isSubscription"`
	StripePriceID  string `json:"stripePriceId"`
}

type checkoutSessionRequest struct {
	Items      []checkoutItemRequest `json:"items"`
	CustomerID string                `json:"customerId"`
	UserEmail  string                `json:"userEmail"`
	ReturnURL  string                `json:"returnUrl"`
}

// HandleCreateCheckoutSession opens a hosted checkout session and returns
// its redirect URL.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	items := make([]payments.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, payments.CheckoutItem{
			ID:             item.ID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			IsSubscription: item.IsSubscription,
			StripePriceID:  item.StripePriceID,
		})
	}

	return respondWithCheckoutSession(c, req.ReturnURL, payments.CheckoutParams{
		Items:         items,
		CustomerID:    req.CustomerID,
		CustomerEmail: req.UserEmail,
	})
}

// respondWithCheckoutSession opens the session and maps the basket
// validation errors onto their 400 bodies. Shared by the direct checkout
// endpoint and the stored-basket checkout.
func respondWithCheckoutSession(c *fiber.Ctx, returnURL string, params payments.CheckoutParams) error {
	cfg := checkoutConfigFromEnv()
	if returnURL = strings.TrimSpace(returnURL); returnURL != "" {
		cfg.BaseURL = strings.TrimSuffix(returnURL, "/")
	}
	checkout := payments.NewCheckout(newProcessor(), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	url, err := checkout.CreateSession(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNoItems):
			return jsonError(c, fiber.StatusBadRequest, "No items provided", nil)
		case errors.Is(err, payments.ErrCustomerRequired):
			return jsonError(c, fiber.StatusBadRequest, "Customer ID required for subscriptions", nil)
		default:
			return jsonError(c, fiber.StatusInternalServerError, "Failed to create checkout session", err)
		}
	}

	return c.JSON(fiber.Map{"url": url})
}

// HandleOrderDetails returns the paid session subset used by the order
// confirmation page.
func HandleOrderDetails(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	if sessionID == "" {
		return jsonError(c, fiber.StatusBadRequest, "session_id is required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sess, err := newProcessor().GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if payments.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, "Order not found", nil)
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve order details", err)
	}

	lineItems := make([]fiber.Map, 0, len(sess.LineItems))
	for _, li := range sess.LineItems {
		lineItems = append(lineItems, fiber.Map{
			"description": li.Description,
			"quantity":    li.Quantity,
			"amountTotal": li.AmountTotal,
		})
	}

	return c.JSON(fiber.Map{
		"id":            sess.ID,
		"status":        sess.Status,
		"paymentStatus": sess.PaymentStatus,
		"customerEmail": sess.CustomerEmail,
		"currency":      sess.Currency,
		"amountTotal":   sess.AmountTotal,
		"shippingCost":  sess.ShippingCost,
		"created":       sess.Created,
		"lineItems":     lineItems,
	})
}
