package payments

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"

	"github.com/revitalife/revitalife-shop/app/models"
)

func notFoundErr() error {
	return &stripe.Error{Code: stripe.ErrorCodeResourceMissing, Msg: "No such customer"}
}

type fakeProcessor struct {
	customers     map[string]*Customer
	subscriptions map[string]*Subscription

	createCustomerCalls int
	createdCustomerID   string

	sessionURL        string
	lastSessionParams *stripe.CheckoutSessionParams
	sessionErr        error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{
		customers:         map[string]*Customer{},
		subscriptions:     map[string]*Subscription{},
		createdCustomerID: "cus_new",
		sessionURL:        "https://checkout.example.com/pay/cs_test_1",
	}
}

func (f *fakeProcessor) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	if cust, ok := f.customers[id]; ok {
		return cust, nil
	}
	return nil, notFoundErr()
}

func (f *fakeProcessor) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	f.createCustomerCalls++
	cust := &Customer{ID: f.createdCustomerID, Email: email}
	f.customers[cust.ID] = cust
	return cust, nil
}

func (f *fakeProcessor) UpdateCustomerShipping(ctx context.Context, id string, shipping ShippingDetails) (*Customer, error) {
	cust, ok := f.customers[id]
	if !ok {
		return nil, notFoundErr()
	}
	cust.Shipping = &shipping
	return cust, nil
}

func (f *fakeProcessor) ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	return nil, nil
}

func (f *fakeProcessor) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	if sub, ok := f.subscriptions[id]; ok {
		return sub, nil
	}
	return nil, notFoundErr()
}

func (f *fakeProcessor) ListActiveSubscriptions(ctx context.Context, customerID string, limit int64) ([]Subscription, error) {
	var subs []Subscription
	for _, sub := range f.subscriptions {
		if sub.CustomerID == customerID && sub.Status == models.SubscriptionStatusActive {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (f *fakeProcessor) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*CheckoutSession, error) {
	f.lastSessionParams = params
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return &CheckoutSession{ID: "cs_test_1", URL: f.sessionURL}, nil
}

func (f *fakeProcessor) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	return nil, notFoundErr()
}

func (f *fakeProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://billing.example.com/session", nil
}

func (f *fakeProcessor) GetPrice(ctx context.Context, id string) (*Price, error) {
	return nil, notFoundErr()
}

type fakeRepository struct {
	profiles      []*models.Profile
	subscriptions []*models.Subscription
	events        []*models.WebhookEvent
	signups       []*models.AppSignup

	nextSubID   uint
	nextEventID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextSubID: 1, nextEventID: 1}
}

func (r *fakeRepository) GetProfileByEmail(email string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetProfileByCustomerID(customerID string) (*models.Profile, error) {
	for _, p := range r.profiles {
		if p.StripeCustomerID == customerID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) SetProfileCustomerID(profileID, customerID string) error {
	for _, p := range r.profiles {
		if p.ID == profileID {
			p.StripeCustomerID = customerID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) SetProfileSubscriptionStatus(profileID, status string) error {
	for _, p := range r.profiles {
		if p.ID == profileID {
			p.SubscriptionStatus = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) CountProfiles() (int64, error) {
	return int64(len(r.profiles)), nil
}

func (r *fakeRepository) GetSubscriptionByProviderID(subscriptionID string) (*models.Subscription, error) {
	for _, s := range r.subscriptions {
		if s.StripeSubscriptionID == subscriptionID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) GetActiveSubscriptionForProfile(profileID string) (*models.Subscription, error) {
	for _, s := range r.subscriptions {
		if s.ProfileID == profileID && s.Status == models.SubscriptionStatusActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateSubscription(sub *models.Subscription) error {
	sub.ID = r.nextSubID
	r.nextSubID++
	r.subscriptions = append(r.subscriptions, sub)
	return nil
}

func (r *fakeRepository) UpdateSubscription(id uint, updates map[string]interface{}) error {
	for _, s := range r.subscriptions {
		if s.ID != id {
			continue
		}
		for column, value := range updates {
			switch column {
			case "status":
				s.Status = value.(string)
			case "stripe_customer_id":
				s.StripeCustomerID = value.(string)
			case "stripe_price_id":
				s.StripePriceID = value.(string)
			case "cancel_at_period_end":
				s.CancelAtPeriodEnd = value.(bool)
			case "current_period_start":
				s.CurrentPeriodStart = value.(*time.Time)
			case "current_period_end":
				s.CurrentPeriodEnd = value.(*time.Time)
			default:
				return fmt.Errorf("unexpected update column %s", column)
			}
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	for _, e := range r.events {
		if e.Provider == event.Provider && e.ProviderEventID == event.ProviderEventID {
			return false, e, nil
		}
	}
	event.ID = r.nextEventID
	r.nextEventID++
	r.events = append(r.events, event)
	return true, event, nil
}

func (r *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRepository) CreateAppSignup(signup *models.AppSignup) error {
	r.signups = append(r.signups, signup)
	return nil
}
