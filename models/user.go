package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	Password           string     `gorm:"not null" json:"-"`
	Name               string     `json:"name"`
	Role               string     `gorm:"default:user" json:"role"` // user, admin
	SubscriptionStatus string     `gorm:"default:inactive" json:"subscriptionStatus"`
	SubscriptionEndsAt *time.Time `json:"subscriptionEndsAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasActiveSubscription reports whether the user may view analytics at now.
// An active subscription without an end date never expires.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.SubscriptionStatus != SubscriptionActive {
		return false
	}
	return u.SubscriptionEndsAt == nil || now.Before(*u.SubscriptionEndsAt)
}
