package payments

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
)

// CheckoutConfig holds the statically configured price ids and the site
// base URL used for redirect targets.
type CheckoutConfig struct {
	OneTimePriceID      string
	SubscriptionPriceID string
	BaseURL             string
}

// Checkout opens hosted checkout sessions against the processor.
type Checkout struct {
	processor Processor
	cfg       CheckoutConfig
}

func NewCheckout(processor Processor, cfg CheckoutConfig) *Checkout {
	return &Checkout{processor: processor, cfg: cfg}
}

// ResolveMode picks the checkout mode for a basket. Mixed baskets are
// coerced entirely into subscription mode; there is no split-cart support.
func ResolveMode(items []CheckoutItem) string {
	for _, item := range items {
		if item.IsSubscription {
			return ModeSubscription
		}
	}
	return ModePayment
}

// CreateSession validates the basket, resolves the customer and opens a
// hosted checkout session. It returns the redirect URL.
func (c *Checkout) CreateSession(ctx context.Context, params CheckoutParams) (string, error) {
	if len(params.Items) == 0 {
		return "", ErrNoItems
	}

	mode := ResolveMode(params.Items)
	if mode == ModeSubscription && strings.TrimSpace(params.CustomerID) == "" {
		return "", ErrCustomerRequired
	}

	customerID, err := c.resolveCustomer(ctx, params.CustomerID, params.CustomerEmail)
	if err != nil {
		return "", err
	}

	lineItems, err := c.buildLineItems(params.Items)
	if err != nil {
		return "", err
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(mode),
		LineItems:          lineItems,
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(c.cfg.BaseURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(c.cfg.BaseURL + "/cancel"),
	}
	if customerID != "" {
		sessionParams.Customer = stripe.String(customerID)
	}
	if mode == ModePayment {
		sessionParams.ShippingOptions = shippingOptions()
	}

	sess, err := c.processor.CreateCheckoutSession(ctx, sessionParams)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if sess.URL == "" {
		return "", ErrNoSessionURL
	}
	return sess.URL, nil
}

// resolveCustomer returns the customer id to attach to the session. A
// supplied id that the processor no longer knows is replaced by exactly
// one newly created customer; this is a single-attempt fallback, not a
// retry loop.
func (c *Checkout) resolveCustomer(ctx context.Context, customerID, email string) (string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", nil
	}

	cust, err := c.processor.GetCustomer(ctx, customerID)
	if err == nil && !cust.Deleted {
		return cust.ID, nil
	}
	if err != nil && !IsNotFound(err) {
		return "", fmt.Errorf("retrieve customer %s: %w", customerID, err)
	}

	created, err := c.processor.CreateCustomer(ctx, email)
	if err != nil {
		return "", fmt.Errorf("create replacement customer: %w", err)
	}
	return created.ID, nil
}

// buildLineItems prefers an explicit per-item price reference and falls
// back to the statically configured one-time/subscription price by the
// item's recurring flag.
func (c *Checkout) buildLineItems(items []CheckoutItem) ([]*stripe.CheckoutSessionLineItemParams, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		priceID := strings.TrimSpace(item.StripePriceID)
		if priceID == "" {
			if item.IsSubscription {
				priceID = c.cfg.SubscriptionPriceID
			} else {
				priceID = c.cfg.OneTimePriceID
			}
		}
		if priceID == "" {
			return nil, fmt.Errorf("no price configured for item %s", item.ID)
		}

		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(quantity),
		})
	}
	return lineItems, nil
}

// shippingOptions returns the three static shipping tiers attached to
// one-time purchases. Subscriptions ship on the plan's own schedule.
func shippingOptions() []*stripe.CheckoutSessionShippingOptionParams {
	tiers := []struct {
		name    string
		amount  int64
		minDays int64
		maxDays int64
	}{
		{name: "Free Shipping", amount: 0, minDays: 5, maxDays: 7},
		{name: "Standard Shipping", amount: 499, minDays: 3, maxDays: 5},
		{name: "Express Shipping", amount: 999, minDays: 1, maxDays: 2},
	}

	options := make([]*stripe.CheckoutSessionShippingOptionParams, 0, len(tiers))
	for _, tier := range tiers {
		options = append(options, &stripe.CheckoutSessionShippingOptionParams{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String("fixed_amount"),
				DisplayName: stripe.String(tier.name),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(tier.amount),
					Currency: stripe.String("gbp"),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(tier.minDays),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String("business_day"),
						Value: stripe.Int64(tier.maxDays),
					},
				},
			},
		})
	}
	return options
}
