package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// AppSignup is an early-access signup captured from the marketing site.
type AppSignup struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email         string    `gorm:"type:varchar(200);not null;index" json:"email" validate:"required,email,max=200"`
	Phone         string    `gorm:"type:varchar(32);default:null" json:"phone" validate:"max=32"`
	Notifications bool      `gorm:"default:false" json:"notifications"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *AppSignup) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
