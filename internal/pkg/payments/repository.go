package payments

import (
	"time"

	"github.com/revitalife/revitalife-shop/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the sync service and the
// account endpoints. Each statement is independent; there is no
// transaction spanning the profile and subscription tables.
type Repository interface {
	GetProfileByEmail(email string) (*models.Profile, error)
	GetProfileByCustomerID(customerID string) (*models.Profile, error)
	SetProfileCustomerID(profileID, customerID string) error
	SetProfileSubscriptionStatus(profileID, status string) error
	CountProfiles() (int64, error)

	GetSubscriptionByProviderID(subscriptionID string) (*models.Subscription, error)
	GetActiveSubscriptionForProfile(profileID string) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	UpdateSubscription(id uint, updates map[string]interface{}) error

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error

	CreateAppSignup(signup *models.AppSignup) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProfileByEmail(email string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("email = ?", email).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetProfileByCustomerID(customerID string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.Where("stripe_customer_id = ?", customerID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) SetProfileCustomerID(profileID, customerID string) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", profileID).
		Update("stripe_customer_id", customerID).Error
}

func (r *gormRepository) SetProfileSubscriptionStatus(profileID, status string) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", profileID).
		Update("subscription_status", status).Error
}

func (r *gormRepository) CountProfiles() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *gormRepository) GetSubscriptionByProviderID(subscriptionID string) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", subscriptionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) GetActiveSubscriptionForProfile(profileID string) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.Where("profile_id = ? AND status = ?", profileID, models.SubscriptionStatusActive).
		Order("created_at DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) UpdateSubscription(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Subscription{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) CreateAppSignup(signup *models.AppSignup) error {
	return r.db.Create(signup).Error
}
