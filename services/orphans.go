package services

import (
	"time"

	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TrendSelector picks cleanup candidates. Every enabled mode contributes to
// one id set.
type TrendSelector struct {
	Orphaned  bool
	OlderThan *time.Time
	Titles    []string
}

// idSet keeps first-seen order so results are stable across runs.
type idSet struct {
	order []uuid.UUID
	seen  map[uuid.UUID]bool
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[uuid.UUID]bool)}
}

func (s *idSet) add(ids ...uuid.UUID) {
	for _, id := range ids {
		if !s.seen[id] {
			s.seen[id] = true
			s.order = append(s.order, id)
		}
	}
}

func (s *idSet) ids() []uuid.UUID {
	return s.order
}

// OrphanedCategoryIDs returns root categories with neither children nor trends.
func OrphanedCategoryIDs(tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.Category{}).
		Where("parent_id IS NULL").
		Where("NOT EXISTS (SELECT 1 FROM categories child WHERE child.parent_id = categories.id)").
		Where("NOT EXISTS (SELECT 1 FROM trends t WHERE t.category_id = categories.id)").
		Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "failed to scan orphaned categories")
}

func CategoryIDsBySlugs(tx *gorm.DB, slugs []string) ([]uuid.UUID, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := tx.Model(&models.Category{}).Where("slug IN ?", slugs).Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "failed to look up categories by slug")
}

// TrendCandidateIDs unions the selector's modes, so a trend matched by more
// than one mode appears once.
func TrendCandidateIDs(tx *gorm.DB, sel TrendSelector) ([]uuid.UUID, error) {
	set := newIDSet()

	if sel.Orphaned {
		var ids []uuid.UUID
		if err := tx.Model(&models.Trend{}).Where("category_id IS NULL").Pluck("id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "failed to scan orphaned trends")
		}
		set.add(ids...)
	}
	if sel.OlderThan != nil {
		var ids []uuid.UUID
		if err := tx.Model(&models.Trend{}).Where("created_at < ?", *sel.OlderThan).Pluck("id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "failed to scan trends by age")
		}
		set.add(ids...)
	}
	if len(sel.Titles) > 0 {
		var ids []uuid.UUID
		if err := tx.Model(&models.Trend{}).Where("title IN ?", sel.Titles).Pluck("id", &ids).Error; err != nil {
			return nil, errors.Wrap(err, "failed to look up trends by title")
		}
		set.add(ids...)
	}

	return set.ids(), nil
}

// UnusedColorIDs returns colors that have no analytics.
func UnusedColorIDs(tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.ColorTrend{}).
		Where("NOT EXISTS (SELECT 1 FROM analytics a WHERE a.color_id = color_trends.id)").
		Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "failed to scan unused colors")
}

func ColorIDsByNames(tx *gorm.DB, names []string) ([]uuid.UUID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := tx.Model(&models.ColorTrend{}).Where("name IN ?", names).Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "failed to look up colors by name")
}
