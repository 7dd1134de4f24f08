package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAnalyticsLengthMismatch = errors.New("analytics dates and values must have the same length")
	ErrAnalyticsOwner          = errors.New("analytics must belong to exactly one trend or color")
)

// AgeSegment is one bucket of the audience age breakdown, e.g. {"18-24", 40}.
type AgeSegment struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Analytics is a time series owned by exactly one Trend or ColorTrend.
// Dates and Values are parallel arrays in insertion order.
type Analytics struct {
	ID          uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	Dates       datatypes.JSONSlice[time.Time]  `json:"dates"`
	Values      datatypes.JSONSlice[float64]    `json:"values"`
	AgeSegments datatypes.JSONSlice[AgeSegment] `json:"ageSegments,omitempty"`
	TrendID     *uuid.UUID                      `gorm:"type:uuid;uniqueIndex" json:"trendId,omitempty"`
	ColorID     *uuid.UUID                      `gorm:"type:uuid;uniqueIndex" json:"colorId,omitempty"`
	CreatedAt   time.Time                       `json:"createdAt"`
	UpdatedAt   time.Time                       `json:"updatedAt"`
}

func (Analytics) TableName() string {
	return "analytics"
}

func (a *Analytics) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return a.Validate()
}

func (a *Analytics) Validate() error {
	if len(a.Dates) != len(a.Values) {
		return ErrAnalyticsLengthMismatch
	}
	if (a.TrendID == nil) == (a.ColorID == nil) {
		return ErrAnalyticsOwner
	}
	return nil
}
