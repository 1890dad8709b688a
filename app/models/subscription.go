package models

import "time"

// Subscription statuses mirror the processor's own enum.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusUnpaid     = "unpaid"
	SubscriptionStatusIncomplete = "incomplete"
)

const (
	PlanTypeMonthly = "monthly"
	PlanTypeYearly  = "yearly"
)

// Subscription is the local mirror of a Stripe subscription object.
// Rows are never hard-deleted; cancellation is a status transition.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ProfileID            string     `gorm:"type:char(36);not null;index" json:"profile_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_stripe_sub_id" json:"stripe_subscription_id"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;index" json:"stripe_customer_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	PlanType             string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"plan_type"`
	StripePriceID        string     `gorm:"type:varchar(191);default:''" json:"stripe_price_id"`
	Quantity             int64      `gorm:"not null;default:1" json:"quantity"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
