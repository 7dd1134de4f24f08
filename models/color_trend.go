package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var hexPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// ValidHex reports whether s is a #RGB or #RRGGBB color.
func ValidHex(s string) bool {
	return hexPattern.MatchString(s)
}

type ColorTrend struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"not null;uniqueIndex" json:"name"`
	Hex        string     `gorm:"not null" json:"hex"`
	ImageURL   string     `json:"imageUrl"`
	Popularity int        `gorm:"default:0" json:"popularity"` // 0-100
	Palette1   string     `json:"palette1,omitempty"`
	Palette2   string     `json:"palette2,omitempty"`
	Palette3   string     `json:"palette3,omitempty"`
	Palette4   string     `json:"palette4,omitempty"`
	Palette5   string     `json:"palette5,omitempty"`
	Analytics  *Analytics `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"analytics,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (ColorTrend) TableName() string {
	return "color_trends"
}

func (c *ColorTrend) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Palette returns the non-empty palette entries in order.
func (c *ColorTrend) Palette() []string {
	var out []string
	for _, p := range []string{c.Palette1, c.Palette2, c.Palette3, c.Palette4, c.Palette5} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
