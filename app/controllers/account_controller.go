package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revitalife/revitalife-shop/internal/pkg/database"
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

type customerRequest struct {
	StripeCustomerID string `json:"stripeCustomerId"`
}

type portalSessionRequest struct {
	StripeCustomerID string `json:"stripeCustomerId"`
	ReturnURL        string `json:"returnUrl"`
}

type shippingAddressRequest struct {
	StripeCustomerID string `json:"stripeCustomerId"`
	Name             string `json:"name"`
	Address          struct {
		Line1      string `json:"line1"`
		Line2      string `json:"line2"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	} `json:"address"`
}

func parseCustomerID(c *fiber.Ctx) (string, error) {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.StripeCustomerID), nil
}

// HandleBillingDetails returns the customer's shipping address and card
// payment methods.
func HandleBillingDetails(c *fiber.Ctx) error {
	customerID, err := parseCustomerID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if customerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Customer ID is required", nil)
	}

	processor := newProcessor()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cust, err := processor.GetCustomer(ctx, customerID)
	if err != nil {
		if payments.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, "Customer not found", nil)
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve billing details", err)
	}
	if cust.Deleted {
		return jsonError(c, fiber.StatusNotFound, "Customer not found", nil)
	}

	methods, err := processor.ListCardPaymentMethods(ctx, customerID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve payment methods", err)
	}

	paymentMethods := make([]fiber.Map, 0, len(methods))
	for _, method := range methods {
		entry := fiber.Map{"id": method.ID, "type": method.Type}
		if method.Card != nil {
			entry["card"] = fiber.Map{
				"brand":    method.Card.Brand,
				"last4":    method.Card.Last4,
				"expMonth": method.Card.ExpMonth,
				"expYear":  method.Card.ExpYear,
			}
		}
		paymentMethods = append(paymentMethods, entry)
	}

	return c.JSON(fiber.Map{
		"shipping":       shippingMap(cust.Shipping),
		"paymentMethods": paymentMethods,
	})
}

// HandleSubscriptionDetails returns the customer's single active
// subscription, or null when there is none. The lookup prefers the
// processor and falls back to the locally synced row.
func HandleSubscriptionDetails(c *fiber.Ctx) error {
	customerID, err := parseCustomerID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if customerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Customer ID is required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	svc := payments.NewServiceFromDB(database.GetDB(), newProcessor())
	sub, err := svc.GetActiveSubscription(ctx, customerID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to retrieve subscription details", err)
	}
	if sub == nil {
		return c.JSON(fiber.Map{"subscription": nil})
	}

	periodStart := payments.UnixToTime(sub.CurrentPeriodStart)
	periodEnd := payments.UnixToTime(sub.CurrentPeriodEnd)
	if periodStart == nil || periodEnd == nil {
		fallbackStart, fallbackEnd := payments.ComputePeriodFallback(sub.Created, sub.Interval)
		if periodStart == nil {
			periodStart = fallbackStart
		}
		if periodEnd == nil {
			periodEnd = fallbackEnd
		}
	}

	return c.JSON(fiber.Map{
		"subscription": fiber.Map{
			"id":                 sub.ID,
			"status":             sub.Status,
			"interval":           sub.Interval,
			"quantity":           sub.Quantity,
			"priceId":            sub.PriceID,
			"currentPeriodStart": periodStart,
			"currentPeriodEnd":   periodEnd,
			"nextBillingDate":    periodEnd,
			"trialEnd":           payments.UnixToTime(sub.TrialEnd),
			"cancelAtPeriodEnd":  sub.CancelAtPeriodEnd,
		},
	})
}

// HandleVerifyCustomer reports whether a stored customer id still
// resolves at the processor.
func HandleVerifyCustomer(c *fiber.Ctx) error {
	customerID, err := parseCustomerID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if customerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Customer ID is required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cust, err := newProcessor().GetCustomer(ctx, customerID)
	if err != nil {
		if payments.IsNotFound(err) {
			return c.JSON(fiber.Map{"exists": false})
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to verify customer", err)
	}
	if cust.Deleted {
		return c.JSON(fiber.Map{"exists": false})
	}

	return c.JSON(fiber.Map{"exists": true, "email": cust.Email})
}

// HandlePortalSession opens a billing portal session for the customer.
func HandlePortalSession(c *fiber.Ctx) error {
	var req portalSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	customerID := strings.TrimSpace(req.StripeCustomerID)
	if customerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Customer ID is required", nil)
	}

	returnURL := strings.TrimSpace(req.ReturnURL)
	if returnURL == "" {
		returnURL = checkoutConfigFromEnv().BaseURL + "/account"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	url, err := newProcessor().CreatePortalSession(ctx, customerID, returnURL)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "billing_portal") {
			return jsonError(c, fiber.StatusBadRequest, "Billing portal is not configured", err)
		}
		if payments.IsNotFound(err) || strings.Contains(msg, "customer") {
			return jsonError(c, fiber.StatusBadRequest, "Invalid customer", err)
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to create portal session", err)
	}

	return c.JSON(fiber.Map{"url": url})
}

// HandleUpdateShippingAddress writes a new shipping address on the
// customer and echoes the stored result.
func HandleUpdateShippingAddress(c *fiber.Ctx) error {
	var req shippingAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	customerID := strings.TrimSpace(req.StripeCustomerID)
	if customerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "Customer ID is required", nil)
	}
	if strings.TrimSpace(req.Address.Line1) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Address line 1 is required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cust, err := newProcessor().UpdateCustomerShipping(ctx, customerID, payments.ShippingDetails{
		Name: req.Name,
		Address: payments.Address{
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
	})
	if err != nil {
		if payments.IsNotFound(err) {
			return jsonError(c, fiber.StatusNotFound, "Customer not found", nil)
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update shipping address", err)
	}

	return c.JSON(fiber.Map{"shipping": shippingMap(cust.Shipping)})
}

func shippingMap(shipping *payments.ShippingDetails) interface{} {
	if shipping == nil {
		return nil
	}
	return fiber.Map{
		"name": shipping.Name,
		"address": fiber.Map{
			"line1":      shipping.Address.Line1,
			"line2":      shipping.Address.Line2,
			"city":       shipping.Address.City,
			"state":      shipping.Address.State,
			"postalCode": shipping.Address.PostalCode,
			"country":    shipping.Address.Country,
		},
	}
}
