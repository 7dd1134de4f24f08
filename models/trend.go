package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTrendNoImages       = errors.New("at least one image URL is required")
	ErrTrendMainImageIndex = errors.New("mainImageIndex must point at an existing image")
)

type Trend struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string                      `gorm:"not null;uniqueIndex" json:"title"`
	Description    string                      `gorm:"type:text" json:"description"`
	Type           string                      `gorm:"index" json:"type"`
	ImageURLs      datatypes.JSONSlice[string] `json:"imageUrls"`
	MainImageIndex int                         `gorm:"default:0" json:"mainImageIndex"`
	CategoryID     *uuid.UUID                  `gorm:"type:uuid;index" json:"categoryId"`
	Category       *Category                   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Analytics      *Analytics                  `gorm:"foreignKey:TrendID;constraint:OnDelete:CASCADE" json:"analytics,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

func (Trend) TableName() string {
	return "trends"
}

func (t *Trend) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Validate checks the image invariants of a complete trend.
func (t *Trend) Validate() error {
	if len(t.ImageURLs) == 0 {
		return ErrTrendNoImages
	}
	if t.MainImageIndex < 0 || t.MainImageIndex >= len(t.ImageURLs) {
		return ErrTrendMainImageIndex
	}
	return nil
}

// MainImage returns the URL selected by MainImageIndex, or "" when the
// trend has no usable image.
func (t *Trend) MainImage() string {
	if t.MainImageIndex < 0 || t.MainImageIndex >= len(t.ImageURLs) {
		return ""
	}
	return t.ImageURLs[t.MainImageIndex]
}
