package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/revitalife/revitalife-shop/internal/pkg/basket"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

const basketIDHeader = "X-Basket-ID"

var basketStore = basket.NewRedisStore(basket.DefaultTTL)

func basketSessionID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(basketIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

func basketResponse(c *fiber.Ctx, b *basket.Basket) error {
	c.Set(basketIDHeader, b.SessionID)
	return c.JSON(fiber.Map{
		"basketId":        b.SessionID,
		"items":           b.Items,
		"total":           b.Total(),
		"itemCount":       b.ItemCount(),
		"hasSubscription": b.HasSubscriptionItem(),
	})
}

// HandleGetBasket returns the basket for the caller's basket id, creating
// an empty one for new callers.
func HandleGetBasket(c *fiber.Ctx) error {
	b, err := basketStore.Load(c.Context(), basketSessionID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load basket", err)
	}
	return basketResponse(c, b)
}

// HandleAddBasketItem merges an item into the basket.
func HandleAddBasketItem(c *fiber.Ctx) error {
	var item basket.Item
	if err := c.BodyParser(&item); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if strings.TrimSpace(item.ID) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Item id is required", nil)
	}

	b, err := basketStore.Load(c.Context(), basketSessionID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load basket", err)
	}
	b.Add(item)
	if err := basketStore.Save(c.Context(), b); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save basket", err)
	}
	return basketResponse(c, b)
}

// HandleUpdateBasketItem sets a line quantity; zero removes the line.
// The subscription flag in the body selects between a product's one-time
// and subscription lines.
func HandleUpdateBasketItem(c *fiber.Ctx) error {
	var req struct {
		Quantity       int64 `json:"quantity"`
		IsSubscription bool  `json:"isSubscription"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	b, err := basketStore.Load(c.Context(), basketSessionID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load basket", err)
	}
	if !b.UpdateQuantity(c.Params("id"), req.IsSubscription, req.Quantity) {
		return jsonError(c, fiber.StatusNotFound, "Item not in basket", nil)
	}
	if err := basketStore.Save(c.Context(), b); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save basket", err)
	}
	return basketResponse(c, b)
}

// HandleRemoveBasketItem deletes one line from the basket. The
// subscription query flag selects the line variant.
func HandleRemoveBasketItem(c *fiber.Ctx) error {
	b, err := basketStore.Load(c.Context(), basketSessionID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load basket", err)
	}
	if !b.Remove(c.Params("id"), c.QueryBool("subscription")) {
		return jsonError(c, fiber.StatusNotFound, "Item not in basket", nil)
	}
	if err := basketStore.Save(c.Context(), b); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save basket", err)
	}
	return basketResponse(c, b)
}

// HandleBasketCheckout opens a hosted checkout session for the stored
// basket.
func HandleBasketCheckout(c *fiber.Ctx) error {
	var req struct {
		CustomerID string `json:"customerId"`
		UserEmail  string `json:"userEmail"`
		ReturnURL  string `json:"returnUrl"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
		}
	}

	b, err := basketStore.Load(c.Context(), basketSessionID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load basket", err)
	}

	return respondWithCheckoutSession(c, req.ReturnURL, payments.CheckoutParams{
		Items:         b.CheckoutItems(),
		CustomerID:    req.CustomerID,
		CustomerEmail: req.UserEmail,
	})
}

// HandleClearBasket empties the basket.
func HandleClearBasket(c *fiber.Ctx) error {
	sessionID := basketSessionID(c)
	if err := basketStore.Delete(c.Context(), sessionID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to clear basket", err)
	}
	return basketResponse(c, basket.New(sessionID))
}
