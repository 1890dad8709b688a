package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/revitalife/revitalife-shop/app/models"
	"gorm.io/gorm"
)

// Recognized webhook event types. Everything else is acknowledged and
// ignored.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventSubscriptionCreated      = "customer.subscription.created"
	EventSubscriptionUpdated      = "customer.subscription.updated"
	EventSubscriptionDeleted      = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventInvoicePaymentFailed     = "invoice.payment_failed"
)

// Service applies processor webhook events to the local tables.
type Service struct {
	repo      Repository
	processor Processor
}

func NewService(repo Repository, processor Processor) *Service {
	return &Service{repo: repo, processor: processor}
}

// NewServiceFromDB creates a sync service from a GORM handle.
func NewServiceFromDB(db *gorm.DB, processor Processor) *Service {
	return NewService(NewRepository(db), processor)
}

// IsRecognizedEventType reports whether the event type has a handler.
func IsRecognizedEventType(eventType string) bool {
	switch eventType {
	case EventCheckoutSessionCompleted,
		EventSubscriptionCreated,
		EventSubscriptionUpdated,
		EventSubscriptionDeleted,
		EventInvoicePaymentSucceeded,
		EventInvoicePaymentFailed:
		return true
	default:
		return false
	}
}

// GetActiveSubscription returns the customer's active subscription,
// preferring the processor's listing and falling back to the locally
// synced row when the processor reports none. Both sources empty
// returns (nil, nil).
func (s *Service) GetActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	subs, err := s.processor.ListActiveSubscriptions(ctx, customerID, 1)
	if err != nil {
		if !IsNotFound(err) {
			return nil, fmt.Errorf("list subscriptions for %s: %w", customerID, err)
		}
	} else if len(subs) > 0 {
		sub := subs[0]
		return &sub, nil
	}

	profile, err := s.repo.GetProfileByCustomerID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve profile for customer %s: %w", customerID, err)
	}
	row, err := s.repo.GetActiveSubscriptionForProfile(profile.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("look up local subscription for profile %s: %w", profile.ID, err)
	}
	return subscriptionFromRow(row), nil
}

func subscriptionFromRow(row *models.Subscription) *Subscription {
	sub := &Subscription{
		ID:                row.StripeSubscriptionID,
		CustomerID:        row.StripeCustomerID,
		Status:            row.Status,
		PriceID:           row.StripePriceID,
		Interval:          IntervalFromPlanType(row.PlanType),
		Quantity:          row.Quantity,
		Created:           row.CreatedAt.Unix(),
		CancelAtPeriodEnd: row.CancelAtPeriodEnd,
	}
	if row.CurrentPeriodStart != nil {
		sub.CurrentPeriodStart = row.CurrentPeriodStart.Unix()
	}
	if row.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = row.CurrentPeriodEnd.Unix()
	}
	return sub
}

// RecordEvent persists a webhook delivery idempotently, keyed on the
// processor's event id. The second delivery of the same event returns
// created=false and must not be reprocessed.
func (s *Service) RecordEvent(ctx context.Context, eventID, eventType string, payload []byte) (bool, *models.WebhookEvent, error) {
	_ = ctx
	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256(payload)
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        ProviderStripe,
		ProviderEventID: id,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     string(payload),
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkProcessed marks an event row as handled and stores an optional error.
func (s *Service) MarkProcessed(ctx context.Context, eventID uint, processingErr error) error {
	_ = ctx
	if eventID == 0 {
		return errors.New("webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(eventID, errMsg)
}

// ProcessEvent dispatches a verified webhook event to its handler. The
// returned error is a processing failure to be logged and stored on the
// event row; the HTTP response stays 200 either way once the signature
// checked out.
func (s *Service) ProcessEvent(ctx context.Context, eventType string, raw []byte) error {
	switch eventType {
	case EventCheckoutSessionCompleted:
		var payload checkoutSessionPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, payload)

	case EventSubscriptionCreated:
		sub, err := decodeSubscriptionPayload(raw)
		if err != nil {
			return err
		}
		return s.handleSubscriptionState(ctx, sub, false)

	case EventSubscriptionUpdated:
		sub, err := decodeSubscriptionPayload(raw)
		if err != nil {
			return err
		}
		return s.handleSubscriptionState(ctx, sub, true)

	case EventSubscriptionDeleted:
		sub, err := decodeSubscriptionPayload(raw)
		if err != nil {
			return err
		}
		return s.handleSubscriptionDeleted(ctx, sub)

	case EventInvoicePaymentSucceeded, EventInvoicePaymentFailed:
		var payload invoicePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return s.handleInvoiceEvent(ctx, payload)

	default:
		log.Printf("webhook: ignoring event type %s", eventType)
		return nil
	}
}

type checkoutSessionPayload struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	Customer        string `json:"customer"`
	Subscription    string `json:"subscription"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

type subscriptionPayload struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	Created            int64  `json:"created"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	Items              struct {
		Data []struct {
			Quantity           int64 `json:"quantity"`
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID        string `json:"id"`
				Recurring struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

type invoicePayload struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
	Parent       struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// subscriptionID handles both payload shapes; newer API versions moved
// the reference under parent.subscription_details.
func (p invoicePayload) subscriptionID() string {
	if id := strings.TrimSpace(p.Subscription); id != "" {
		return id
	}
	return strings.TrimSpace(p.Parent.SubscriptionDetails.Subscription)
}

func decodeSubscriptionPayload(raw []byte) (Subscription, error) {
	var payload subscriptionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Subscription{}, fmt.Errorf("decode subscription: %w", err)
	}

	sub := Subscription{
		ID:                 payload.ID,
		CustomerID:         payload.Customer,
		Status:             payload.Status,
		Created:            payload.Created,
		CancelAtPeriodEnd:  payload.CancelAtPeriodEnd,
		CurrentPeriodStart: payload.CurrentPeriodStart,
		CurrentPeriodEnd:   payload.CurrentPeriodEnd,
		Quantity:           1,
	}
	if len(payload.Items.Data) > 0 {
		item := payload.Items.Data[0]
		sub.PriceID = item.Price.ID
		sub.Interval = item.Price.Recurring.Interval
		if item.Quantity > 0 {
			sub.Quantity = item.Quantity
		}
		// Newer API versions carry the period on the item instead.
		if sub.CurrentPeriodStart == 0 {
			sub.CurrentPeriodStart = item.CurrentPeriodStart
		}
		if sub.CurrentPeriodEnd == 0 {
			sub.CurrentPeriodEnd = item.CurrentPeriodEnd
		}
	}
	return sub, nil
}

// handleCheckoutCompleted links the processor customer to the profile
// matched by the session's contact email, inserts the subscription row
// and flips the profile projection to active. Email is the join key only
// here; the profile does not carry a customer id before this point.
func (s *Service) handleCheckoutCompleted(ctx context.Context, payload checkoutSessionPayload) error {
	customerID := strings.TrimSpace(payload.Customer)
	subscriptionID := strings.TrimSpace(payload.Subscription)
	email := strings.TrimSpace(payload.CustomerEmail)
	if email == "" {
		email = strings.TrimSpace(payload.CustomerDetails.Email)
	}
	if customerID == "" || subscriptionID == "" || email == "" {
		return fmt.Errorf("checkout session %s missing customer, subscription or email", payload.ID)
	}

	cust, err := s.processor.GetCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("retrieve customer %s: %w", customerID, err)
	}
	if cust.Deleted {
		return fmt.Errorf("customer %s was deleted", customerID)
	}

	profile, err := s.repo.GetProfileByEmail(email)
	if err != nil {
		return fmt.Errorf("resolve profile for %s: %w", email, err)
	}

	if err := s.repo.SetProfileCustomerID(profile.ID, customerID); err != nil {
		return fmt.Errorf("set customer id on profile %s: %w", profile.ID, err)
	}

	sub, err := s.processor.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}

	status := sub.Status
	if status == "" {
		status = models.SubscriptionStatusActive
	}
	row := &models.Subscription{
		ProfileID:            profile.ID,
		StripeSubscriptionID: subscriptionID,
		StripeCustomerID:     customerID,
		Status:               status,
		PlanType:             PlanTypeFromInterval(sub.Interval),
		StripePriceID:        sub.PriceID,
		Quantity:             sub.Quantity,
		CurrentPeriodStart:   UnixToTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     UnixToTime(sub.CurrentPeriodEnd),
	}
	if row.Quantity < 1 {
		row.Quantity = 1
	}
	if err := s.repo.CreateSubscription(row); err != nil {
		return fmt.Errorf("create subscription row: %w", err)
	}

	// The projection goes to active regardless of the fetched status; a
	// later lifecycle event corrects it.
	if err := s.repo.SetProfileSubscriptionStatus(profile.ID, models.ProfileStatusActive); err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	return nil
}

// handleSubscriptionState converges created and updated events onto the
// same upsert. Updated events additionally refresh the profile
// projection.
func (s *Service) handleSubscriptionState(ctx context.Context, sub Subscription, updateProfile bool) error {
	_ = ctx
	customerID := strings.TrimSpace(sub.CustomerID)
	if customerID == "" {
		return errors.New("subscription event missing customer")
	}

	profile, err := s.repo.GetProfileByCustomerID(customerID)
	if err != nil {
		return fmt.Errorf("resolve profile for customer %s: %w", customerID, err)
	}

	if err := s.syncSubscription(profile.ID, sub); err != nil {
		return err
	}

	if updateProfile {
		if mapped, ok := ProfileStatusForSubscription(sub.Status); ok {
			if err := s.repo.SetProfileSubscriptionStatus(profile.ID, mapped); err != nil {
				return fmt.Errorf("set profile status: %w", err)
			}
		}
	}
	return nil
}

// syncSubscription is the idempotent upsert keyed on the processor's
// subscription id.
func (s *Service) syncSubscription(profileID string, sub Subscription) error {
	status := strings.TrimSpace(sub.Status)
	if status == "" {
		status = models.SubscriptionStatusActive
	}

	existing, err := s.repo.GetSubscriptionByProviderID(sub.ID)
	if err == nil {
		updates := map[string]interface{}{
			"status":               status,
			"stripe_customer_id":   sub.CustomerID,
			"cancel_at_period_end": sub.CancelAtPeriodEnd,
		}
		if sub.PriceID != "" {
			updates["stripe_price_id"] = sub.PriceID
		}
		if start := UnixToTime(sub.CurrentPeriodStart); start != nil {
			updates["current_period_start"] = start
		}
		if end := UnixToTime(sub.CurrentPeriodEnd); end != nil {
			updates["current_period_end"] = end
		}
		if err := s.repo.UpdateSubscription(existing.ID, updates); err != nil {
			return fmt.Errorf("update subscription %s: %w", sub.ID, err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up subscription %s: %w", sub.ID, err)
	}

	quantity := sub.Quantity
	if quantity < 1 {
		quantity = 1
	}
	row := &models.Subscription{
		ProfileID:            profileID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.CustomerID,
		Status:               status,
		PlanType:             PlanTypeFromInterval(sub.Interval),
		StripePriceID:        sub.PriceID,
		Quantity:             quantity,
		CurrentPeriodStart:   UnixToTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     UnixToTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
	if err := s.repo.CreateSubscription(row); err != nil {
		return fmt.Errorf("create subscription %s: %w", sub.ID, err)
	}
	return nil
}

// handleSubscriptionDeleted marks the matched row canceled. The profile
// projection is deliberately left alone; the processor sends a trailing
// updated event for that.
func (s *Service) handleSubscriptionDeleted(ctx context.Context, sub Subscription) error {
	_ = ctx
	customerID := strings.TrimSpace(sub.CustomerID)
	if customerID == "" {
		return errors.New("subscription event missing customer")
	}
	if _, err := s.repo.GetProfileByCustomerID(customerID); err != nil {
		return fmt.Errorf("resolve profile for customer %s: %w", customerID, err)
	}

	existing, err := s.repo.GetSubscriptionByProviderID(sub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing local to cancel.
			return nil
		}
		return fmt.Errorf("look up subscription %s: %w", sub.ID, err)
	}

	updates := map[string]interface{}{
		"status":               models.SubscriptionStatusCanceled,
		"cancel_at_period_end": true,
	}
	if err := s.repo.UpdateSubscription(existing.ID, updates); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", sub.ID, err)
	}
	return nil
}

// handleInvoiceEvent refreshes subscription state off the invoice's
// subscription reference. Invoice events never record payment history
// themselves.
func (s *Service) handleInvoiceEvent(ctx context.Context, payload invoicePayload) error {
	subscriptionID := payload.subscriptionID()
	if subscriptionID == "" {
		return nil
	}

	sub, err := s.processor.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	return s.handleSubscriptionState(ctx, *sub, true)
}
