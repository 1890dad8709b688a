package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/internal/pkg/cache"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

// RRP in minor currency units, used to present the savings figure.
const productRRP int64 = 5699

const (
	productPricesCacheKey = "products:prices"
	productPricesCacheTTL = 10 * time.Minute
)

type productPrice struct {
	PriceID    string `json:"priceId"`
	UnitAmount int64  `json:"unitAmount"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
	RRP        int64  `json:"rrp"`
	Savings    int64  `json:"savings"`
}

type productPricesResponse struct {
	OneTime      *productPrice `json:"oneTime"`
	Subscription *productPrice `json:"subscription"`
}

// HandleProductPrices returns the current one-time and subscription
// pricing, cached for a short window so the storefront does not hit the
// processor on every page view.
func HandleProductPrices(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var cached productPricesResponse
	if err := cache.GetJSON(ctx, productPricesCacheKey, &cached); err == nil {
		return c.JSON(cached)
	} else if !cache.IsMiss(err) {
		log.Printf("products: price cache read failed: %v", err)
	}

	cfg := checkoutConfigFromEnv()
	processor := newProcessor()

	response := productPricesResponse{}
	if cfg.OneTimePriceID != "" {
		price, err := processor.GetPrice(ctx, cfg.OneTimePriceID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve product prices", err)
		}
		response.OneTime = toProductPrice(price)
	}
	if cfg.SubscriptionPriceID != "" {
		price, err := processor.GetPrice(ctx, cfg.SubscriptionPriceID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve product prices", err)
		}
		response.Subscription = toProductPrice(price)
	}

	if err := cache.SetJSON(ctx, productPricesCacheKey, response, productPricesCacheTTL); err != nil {
		log.Printf("products: price cache write failed: %v", err)
	}

	return c.JSON(response)
}

func toProductPrice(price *payments.Price) *productPrice {
	savings := productRRP - price.UnitAmount
	if savings < 0 {
		savings = 0
	}
	return &productPrice{
		PriceID:    price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   price.Currency,
		Interval:   price.Interval,
		RRP:        productRRP,
		Savings:    savings,
	}
}
