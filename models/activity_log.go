package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	Action     string     `gorm:"not null;index" json:"action"` // create, update, delete, cleanup, import, export
	EntityType string     `gorm:"index" json:"entityType"`
	EntityID   string     `json:"entityId,omitempty"`
	Details    string     `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Trend{},
		&ColorTrend{},
		&Analytics{},
		&GoogleToken{},
		&ActivityLog{},
	}
}
