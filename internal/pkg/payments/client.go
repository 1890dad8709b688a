package payments

import (
	"context"
	"errors"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// Processor is the narrow surface of the payment provider this service
// talks to. Checkout session creation takes the SDK params struct
// directly so the builder in checkout.go stays inspectable in tests;
// everything coming back is mapped to the neutral types in types.go.
type Processor interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	CreateCustomer(ctx context.Context, email string) (*Customer, error)
	UpdateCustomerShipping(ctx context.Context, id string, shipping ShippingDetails) (*Customer, error)
	ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	ListActiveSubscriptions(ctx context.Context, customerID string, limit int64) ([]Subscription, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetPrice(ctx context.Context, id string) (*Price, error)
}

type stripeProcessor struct {
	api *client.API
}

// NewStripeProcessor creates a Processor backed by the Stripe API.
func NewStripeProcessor(secretKey string) Processor {
	return &stripeProcessor{api: client.New(secretKey, nil)}
}

// IsNotFound reports whether the processor answered "no such object".
func IsNotFound(err error) bool {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		if sErr.Code == stripe.ErrorCodeResourceMissing {
			return true
		}
		return strings.Contains(sErr.Msg, "No such")
	}
	return false
}

func (p *stripeProcessor) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cust, err := p.api.Customers.Get(id, params)
	if err != nil {
		return nil, err
	}
	return customerFromStripe(cust), nil
}

func (p *stripeProcessor) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	cust, err := p.api.Customers.New(params)
	if err != nil {
		return nil, err
	}
	return customerFromStripe(cust), nil
}

func (p *stripeProcessor) UpdateCustomerShipping(ctx context.Context, id string, shipping ShippingDetails) (*Customer, error) {
	name := shipping.Name
	if name == "" {
		name = "Customer"
	}
	params := &stripe.CustomerParams{
		Shipping: &stripe.CustomerShippingParams{
			Name: stripe.String(name),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(shipping.Address.Line1),
				City:       stripe.String(shipping.Address.City),
				State:      stripe.String(shipping.Address.State),
				PostalCode: stripe.String(shipping.Address.PostalCode),
				Country:    stripe.String(shipping.Address.Country),
			},
		},
	}
	if shipping.Address.Line2 != "" {
		params.Shipping.Address.Line2 = stripe.String(shipping.Address.Line2)
	}
	params.Context = ctx
	cust, err := p.api.Customers.Update(id, params)
	if err != nil {
		return nil, err
	}
	return customerFromStripe(cust), nil
}

func (p *stripeProcessor) ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	var methods []PaymentMethod
	iter := p.api.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		method := PaymentMethod{ID: pm.ID, Type: string(pm.Type)}
		if pm.Card != nil {
			method.Card = &Card{
				Brand:    string(pm.Card.Brand),
				Last4:    pm.Card.Last4,
				ExpMonth: pm.Card.ExpMonth,
				ExpYear:  pm.Card.ExpYear,
			}
		}
		methods = append(methods, method)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return methods, nil
}

func (p *stripeProcessor) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := p.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return subscriptionFromStripe(sub), nil
}

func (p *stripeProcessor) ListActiveSubscriptions(ctx context.Context, customerID string, limit int64) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}

	var subs []Subscription
	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, *subscriptionFromStripe(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (p *stripeProcessor) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*CheckoutSession, error) {
	params.Context = ctx
	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return sessionFromStripe(sess), nil
}

func (p *stripeProcessor) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Expand: []*string{stripe.String("line_items")},
	}
	params.Context = ctx
	sess, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return sessionFromStripe(sess), nil
}

func (p *stripeProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (p *stripeProcessor) GetPrice(ctx context.Context, id string) (*Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx
	price, err := p.api.Prices.Get(id, params)
	if err != nil {
		return nil, err
	}
	out := &Price{
		ID:         price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
	}
	if price.Recurring != nil {
		out.Interval = string(price.Recurring.Interval)
	}
	return out, nil
}

func customerFromStripe(cust *stripe.Customer) *Customer {
	out := &Customer{
		ID:      cust.ID,
		Email:   cust.Email,
		Name:    cust.Name,
		Deleted: cust.Deleted,
	}
	if cust.Shipping != nil {
		shipping := &ShippingDetails{Name: cust.Shipping.Name}
		if cust.Shipping.Address != nil {
			shipping.Address = Address{
				Line1:      cust.Shipping.Address.Line1,
				Line2:      cust.Shipping.Address.Line2,
				City:       cust.Shipping.Address.City,
				State:      cust.Shipping.Address.State,
				PostalCode: cust.Shipping.Address.PostalCode,
				Country:    cust.Shipping.Address.Country,
			}
		}
		out.Shipping = shipping
	}
	return out
}

func subscriptionFromStripe(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		Created:           sub.Created,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		TrialEnd:          sub.TrialEnd,
		Quantity:          1,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	// Period bounds live on the subscription item since the 2025 API.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		out.CurrentPeriodStart = item.CurrentPeriodStart
		out.CurrentPeriodEnd = item.CurrentPeriodEnd
		if item.Quantity > 0 {
			out.Quantity = item.Quantity
		}
		if item.Price != nil {
			out.PriceID = item.Price.ID
			if item.Price.Recurring != nil {
				out.Interval = string(item.Price.Recurring.Interval)
			}
		}
	}
	return out
}

func sessionFromStripe(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		Currency:      string(sess.Currency),
		AmountTotal:   sess.AmountTotal,
		Created:       sess.Created,
	}
	if out.CustomerEmail == "" && sess.CustomerDetails != nil {
		out.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	if sess.ShippingCost != nil {
		out.ShippingCost = sess.ShippingCost.AmountTotal
	}
	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			out.LineItems = append(out.LineItems, SessionLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: li.AmountTotal,
			})
		}
	}
	return out
}
