package services

import (
	"context"
	"time"

	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultBulkTimeout = 10 * time.Second

// BulkService runs the whole-catalog operations: cleanup, export and import.
// Cleanup and import each run in one transaction bounded by Timeout and are
// serialized through Locker.
type BulkService struct {
	DB      *gorm.DB
	Timeout time.Duration
	Locker  Locker
}

func NewBulkService(db *gorm.DB, timeout time.Duration, locker Locker) *BulkService {
	if locker == nil {
		locker = &LocalLocker{}
	}
	return &BulkService{DB: db, Timeout: timeout, Locker: locker}
}

func (s *BulkService) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultBulkTimeout
	}
	return s.Timeout
}

// inMaintenance runs fn inside a single transaction while holding the
// maintenance lock. A timeout or any error from fn rolls everything back.
func (s *BulkService) inMaintenance(ctx context.Context, fn func(tx *gorm.DB) error) error {
	locker := s.Locker
	if locker == nil {
		locker = &LocalLocker{}
	}
	release, err := locker.TryLock(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	return s.DB.WithContext(ctx).Transaction(fn)
}

// Cleanup deletes the selected categories, then trends, then colors. Counts
// are distinct rows deleted; on any failure nothing is deleted and the
// returned stats are zero.
func (s *BulkService) Cleanup(ctx context.Context, opts dtos.CleanupOptions) (dtos.BulkStats, error) {
	cutoff, err := opts.Trends.Cutoff()
	if err != nil {
		return dtos.BulkStats{}, NewValidationError("Invalid cleanup options", utils.FieldIssue{
			Field:   "trends.olderThan",
			Message: "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp",
		})
	}

	var stats dtos.BulkStats
	err = s.inMaintenance(ctx, func(tx *gorm.DB) error {
		var err error
		if stats.Categories, err = cleanupCategories(tx, opts.Categories); err != nil {
			return err
		}
		if stats.Trends, err = cleanupTrends(tx, opts.Trends, cutoff); err != nil {
			return err
		}
		stats.Colors, err = cleanupColors(tx, opts.Colors)
		return err
	})
	if err != nil {
		return dtos.BulkStats{}, errors.Wrap(err, "bulk cleanup")
	}

	logrus.WithFields(logrus.Fields{
		"categories": stats.Categories,
		"trends":     stats.Trends,
		"colors":     stats.Colors,
	}).Info("bulk cleanup committed")
	return stats, nil
}

func cleanupCategories(tx *gorm.DB, opt *dtos.CategoryCleanup) (int64, error) {
	if opt == nil {
		return 0, nil
	}

	if opt.All {
		// Trends survive as orphans; nothing here cascades to them.
		if err := tx.Model(&models.Trend{}).Where("category_id IS NOT NULL").Update("category_id", nil).Error; err != nil {
			return 0, errors.Wrap(err, "failed to detach trends")
		}
		if err := tx.Model(&models.Category{}).Where("parent_id IS NOT NULL").Update("parent_id", nil).Error; err != nil {
			return 0, errors.Wrap(err, "failed to detach subcategories")
		}
		res := tx.Where("1 = 1").Delete(&models.Category{})
		return res.RowsAffected, errors.Wrap(res.Error, "failed to delete categories")
	}

	set := newIDSet()
	bySlug, err := CategoryIDsBySlugs(tx, opt.Slugs)
	if err != nil {
		return 0, err
	}
	set.add(bySlug...)
	if opt.Orphaned {
		orphans, err := OrphanedCategoryIDs(tx)
		if err != nil {
			return 0, err
		}
		set.add(orphans...)
	}
	return deleteCategories(tx, set.ids())
}

func deleteCategories(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := tx.Model(&models.Trend{}).Where("category_id IN ?", ids).Update("category_id", nil).Error; err != nil {
		return 0, errors.Wrap(err, "failed to detach trends")
	}
	if err := tx.Model(&models.Category{}).Where("parent_id IN ?", ids).Update("parent_id", nil).Error; err != nil {
		return 0, errors.Wrap(err, "failed to detach subcategories")
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Category{})
	return res.RowsAffected, errors.Wrap(res.Error, "failed to delete categories")
}

func cleanupTrends(tx *gorm.DB, opt *dtos.TrendCleanup, cutoff *time.Time) (int64, error) {
	if opt == nil {
		return 0, nil
	}

	if opt.All {
		if err := tx.Where("trend_id IS NOT NULL").Delete(&models.Analytics{}).Error; err != nil {
			return 0, errors.Wrap(err, "failed to delete trend analytics")
		}
		res := tx.Where("1 = 1").Delete(&models.Trend{})
		return res.RowsAffected, errors.Wrap(res.Error, "failed to delete trends")
	}

	ids, err := TrendCandidateIDs(tx, TrendSelector{
		Orphaned:  opt.Orphaned,
		OlderThan: cutoff,
		Titles:    opt.Titles,
	})
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	if err := deleteAnalytics(tx, trendOwner, ids); err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Trend{})
	return res.RowsAffected, errors.Wrap(res.Error, "failed to delete trends")
}

func cleanupColors(tx *gorm.DB, opt *dtos.ColorCleanup) (int64, error) {
	if opt == nil {
		return 0, nil
	}

	if opt.All {
		if err := tx.Where("color_id IS NOT NULL").Delete(&models.Analytics{}).Error; err != nil {
			return 0, errors.Wrap(err, "failed to delete color analytics")
		}
		res := tx.Where("1 = 1").Delete(&models.ColorTrend{})
		return res.RowsAffected, errors.Wrap(res.Error, "failed to delete colors")
	}

	set := newIDSet()
	byName, err := ColorIDsByNames(tx, opt.Names)
	if err != nil {
		return 0, err
	}
	set.add(byName...)
	if opt.Unused {
		unused, err := UnusedColorIDs(tx)
		if err != nil {
			return 0, err
		}
		set.add(unused...)
	}

	ids := set.ids()
	if len(ids) == 0 {
		return 0, nil
	}
	if err := deleteAnalytics(tx, colorOwner, ids); err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.ColorTrend{})
	return res.RowsAffected, errors.Wrap(res.Error, "failed to delete colors")
}
