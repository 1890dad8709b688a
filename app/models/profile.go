package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile subscription status is a coarse projection of the latest
// subscription state, written by the webhook sync service.
const (
	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
	ProfileStatusPastDue  = "past_due"
	ProfileStatusCanceled = "canceled"
)

// Profile is the application's user record, one per authenticated account.
// The row is created at signup (external auth event); this service only
// mutates the Stripe linkage and the subscription status projection.
type Profile struct {
	ID                 string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email              string    `gorm:"type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin;index" json:"email" validate:"omitempty,email,max=200"`
	FullName           string    `gorm:"type:varchar(150);default:null" json:"full_name" validate:"max=150"`
	StripeCustomerID   string    `gorm:"type:varchar(191);default:null;index" json:"stripe_customer_id,omitempty"`
	SubscriptionStatus string    `gorm:"type:varchar(32);not null;default:'inactive'" json:"subscription_status" validate:"omitempty,oneof=active inactive past_due canceled"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
