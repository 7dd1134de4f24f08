package services

import (
	"time"

	"trendscope-backend/dtos"
	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	trendOwner = "trend_id"
	colorOwner = "color_id"
)

// ReplaceAnalytics deletes whatever analytics the owner of a has and stores a
// in its place. Exactly one of a.TrendID and a.ColorID must be set.
func ReplaceAnalytics(tx *gorm.DB, a *models.Analytics) error {
	if err := a.Validate(); err != nil {
		return NewValidationError(err.Error())
	}

	column, owner := colorOwner, a.ColorID
	if a.TrendID != nil {
		column, owner = trendOwner, a.TrendID
	}
	if err := deleteAnalytics(tx, column, []uuid.UUID{*owner}); err != nil {
		return err
	}
	return errors.Wrap(tx.Create(a).Error, "failed to store analytics")
}

func deleteAnalytics(tx *gorm.DB, ownerColumn string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Where(ownerColumn+" IN ?", ids).Delete(&models.Analytics{}).Error
	return errors.Wrap(err, "failed to delete analytics")
}

func analyticsToDTO(a *models.Analytics) *dtos.AnalyticsDTO {
	if a == nil {
		return nil
	}
	out := &dtos.AnalyticsDTO{
		Dates:  make([]string, len(a.Dates)),
		Values: append([]float64{}, a.Values...),
	}
	for i, d := range a.Dates {
		out.Dates[i] = d.UTC().Format(dtos.DateLayout)
	}
	for _, seg := range a.AgeSegments {
		out.AgeSegments = append(out.AgeSegments, dtos.AgeSegmentDTO{Name: seg.Name, Value: seg.Value})
	}
	return out
}

// analyticsFromDTO parses day-precision dates back to midnight UTC. The DTO
// must already have passed payload validation.
func analyticsFromDTO(in *dtos.AnalyticsDTO) (*models.Analytics, error) {
	a := &models.Analytics{
		Dates:  make([]time.Time, len(in.Dates)),
		Values: append([]float64{}, in.Values...),
	}
	for i, raw := range in.Dates {
		d, err := time.Parse(dtos.DateLayout, raw)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid analytics date %q", raw)
		}
		a.Dates[i] = d
	}
	for _, seg := range in.AgeSegments {
		a.AgeSegments = append(a.AgeSegments, models.AgeSegment{Name: seg.Name, Value: seg.Value})
	}
	return a, nil
}
