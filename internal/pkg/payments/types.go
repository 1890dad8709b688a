package payments

import "errors"

// Provider tag written to webhook event rows.
const ProviderStripe = "stripe"

// Checkout modes as the processor understands them.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

var (
	ErrNoItems          = errors.New("no items provided")
	ErrCustomerRequired = errors.New("customer id required for subscriptions")
	ErrNoSessionURL     = errors.New("checkout session created but no URL returned")
)

// CheckoutItem is one basket line submitted to the checkout endpoint.
// Price is in minor currency units and is informational only; the line
// item amount always comes from a processor price object.
type CheckoutItem struct {
	ID             string
	Name           string
	Price          int64
	Quantity       int64
	IsSubscription bool
	StripePriceID  string
}

// CheckoutParams carries everything needed to open a hosted checkout page.
type CheckoutParams struct {
	Items         []CheckoutItem
	CustomerID    string
	CustomerEmail string
	ReturnURL     string
}

// Address is a provider-neutral postal address subset.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ShippingDetails is the shipping block on a processor customer.
type ShippingDetails struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// Customer is the subset of a processor customer object this service reads.
type Customer struct {
	ID       string
	Email    string
	Name     string
	Deleted  bool
	Shipping *ShippingDetails
}

// Card is a stored card summary for display.
type Card struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// PaymentMethod is a stored payment method summary for display.
type PaymentMethod struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Card *Card  `json:"card,omitempty"`
}

// Subscription is the subset of a processor subscription object this
// service reads. Period bounds are Unix seconds; zero means the
// processor omitted them.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string
	Interval           string
	Quantity           int64
	Created            int64
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	CancelAtPeriodEnd  bool
	TrialEnd           int64
}

// Price is a processor price object subset.
type Price struct {
	ID         string
	UnitAmount int64
	Currency   string
	Interval   string
}

// SessionLineItem is one purchased line on a completed checkout session.
type SessionLineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	AmountTotal int64  `json:"amount_total"`
}

// CheckoutSession is the subset of a processor checkout session this
// service reads back for order confirmation.
type CheckoutSession struct {
	ID             string            `json:"id"`
	URL            string            `json:"-"`
	Status         string            `json:"status"`
	PaymentStatus  string            `json:"payment_status"`
	CustomerEmail  string            `json:"customer_email"`
	Currency       string            `json:"currency"`
	AmountTotal    int64             `json:"amount_total"`
	ShippingCost   int64             `json:"shipping_cost"`
	Created        int64             `json:"created"`
	LineItems      []SessionLineItem `json:"line_items"`
	CustomerID     string            `json:"-"`
	SubscriptionID string            `json:"-"`
}
