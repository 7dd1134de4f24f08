package activity

import (
	"context"

	"trendscope-backend/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSink writes batches into activity_logs. Entries keep the ids assigned on
// their first attempt, so a retried batch skips rows that already landed.
type GormSink struct {
	DB *gorm.DB
}

func (s *GormSink) Write(ctx context.Context, batch []models.ActivityLog) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(batch, 100).Error
	})
	return errors.Wrap(err, "failed to write activity batch")
}

// Recent returns the newest entries first.
func Recent(ctx context.Context, db *gorm.DB, limit int) ([]models.ActivityLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	var logs []models.ActivityLog
	err := db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, errors.Wrap(err, "failed to list activity")
}
