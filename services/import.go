package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ValidatePayload checks an import document without touching the store. All
// problems are collected into one ValidationError.
func ValidatePayload(p *dtos.BulkPayload) error {
	if p == nil {
		return NewValidationError("Invalid import payload", utils.FieldIssue{Field: "body", Message: "is required"})
	}

	var issues []utils.FieldIssue
	if err := utils.ValidateStruct(p); err != nil {
		issues = append(issues, utils.ValidationIssues(err)...)
	}

	slugs := make(map[string]int, len(p.Categories))
	for i, c := range p.Categories {
		if c.Slug == "" {
			continue
		}
		if first, dup := slugs[c.Slug]; dup {
			issues = append(issues, utils.FieldIssue{
				Field:   fmt.Sprintf("categories[%d].slug", i),
				Message: fmt.Sprintf("duplicates categories[%d].slug %q", first, c.Slug),
			})
			continue
		}
		slugs[c.Slug] = i
		if c.ParentSlug == c.Slug {
			issues = append(issues, utils.FieldIssue{
				Field:   fmt.Sprintf("categories[%d].parentSlug", i),
				Message: "cannot reference the category itself",
			})
		}
	}

	titles := make(map[string]int, len(p.Trends))
	for i, t := range p.Trends {
		if first, dup := titles[t.Title]; dup && t.Title != "" {
			issues = append(issues, utils.FieldIssue{
				Field:   fmt.Sprintf("trends[%d].title", i),
				Message: fmt.Sprintf("duplicates trends[%d].title %q", first, t.Title),
			})
		} else {
			titles[t.Title] = i
		}
		if len(t.ImageURLs) > 0 && t.MainImageIndex >= len(t.ImageURLs) {
			issues = append(issues, utils.FieldIssue{
				Field:   fmt.Sprintf("trends[%d].mainImageIndex", i),
				Message: fmt.Sprintf("must be less than %d", len(t.ImageURLs)),
			})
		}
		issues = append(issues, analyticsIssues(fmt.Sprintf("trends[%d].analytics", i), t.Analytics)...)
	}

	names := make(map[string]int, len(p.Colors))
	for i, c := range p.Colors {
		if first, dup := names[c.Name]; dup && c.Name != "" {
			issues = append(issues, utils.FieldIssue{
				Field:   fmt.Sprintf("colors[%d].name", i),
				Message: fmt.Sprintf("duplicates colors[%d].name %q", first, c.Name),
			})
		} else {
			names[c.Name] = i
		}
		issues = append(issues, analyticsIssues(fmt.Sprintf("colors[%d].analytics", i), c.Analytics)...)
	}

	if len(issues) > 0 {
		return NewValidationError("Invalid import payload", issues...)
	}
	return nil
}

func analyticsIssues(field string, a *dtos.AnalyticsDTO) []utils.FieldIssue {
	if a == nil || len(a.Dates) == len(a.Values) {
		return nil
	}
	return []utils.FieldIssue{{
		Field:   field + ".values",
		Message: fmt.Sprintf("has %d entries but dates has %d", len(a.Values), len(a.Dates)),
	}}
}

// categoryOrder returns indexes into cats such that every in-batch parent
// comes before its children. Parent slugs outside the batch are resolved
// later against the store. A cycle inside the batch yields ErrCycle.
func categoryOrder(cats []dtos.CategoryDTO) ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	bySlug := make(map[string]int, len(cats))
	for i, c := range cats {
		bySlug[c.Slug] = i
	}

	state := make([]int, len(cats))
	order := make([]int, 0, len(cats))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return errors.Wrapf(ErrCycle, "category %q", cats[i].Slug)
		}
		state[i] = visiting
		if parent, ok := bySlug[cats[i].ParentSlug]; ok && cats[i].ParentSlug != "" {
			if err := visit(parent); err != nil {
				return err
			}
		}
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range cats {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Import applies the payload in one transaction. Categories are upserted by
// slug with parents first, trends by title and colors by exact name. Imported
// analytics replace the stored series; a record without analytics ends up
// with none. Unknown categorySlug values leave the trend orphaned, while an
// unknown parentSlug fails the whole import.
func (s *BulkService) Import(ctx context.Context, p *dtos.BulkPayload) (dtos.BulkStats, error) {
	if err := ValidatePayload(p); err != nil {
		return dtos.BulkStats{}, err
	}
	order, err := categoryOrder(p.Categories)
	if err != nil {
		return dtos.BulkStats{}, err
	}

	var stats dtos.BulkStats
	err = s.inMaintenance(ctx, func(tx *gorm.DB) error {
		slugIDs := make(map[string]uuid.UUID, len(p.Categories))

		for _, i := range order {
			id, err := importCategory(ctx, tx, i, p.Categories[i], slugIDs)
			if err != nil {
				return err
			}
			slugIDs[p.Categories[i].Slug] = id
			stats.Categories++
		}

		for _, t := range p.Trends {
			if err := importTrend(tx, t, slugIDs); err != nil {
				return err
			}
			stats.Trends++
		}

		for _, c := range p.Colors {
			if err := importColor(tx, c); err != nil {
				return err
			}
			stats.Colors++
		}
		return nil
	})
	if err != nil {
		return dtos.BulkStats{}, errors.Wrap(err, "bulk import")
	}

	logrus.WithFields(logrus.Fields{
		"categories": stats.Categories,
		"trends":     stats.Trends,
		"colors":     stats.Colors,
	}).Info("bulk import committed")
	return stats, nil
}

func lookupCategoryID(tx *gorm.DB, slug string, slugIDs map[string]uuid.UUID) (uuid.UUID, bool, error) {
	if id, ok := slugIDs[slug]; ok {
		return id, true, nil
	}
	var existing models.Category
	err := tx.Select("id").Where("slug = ?", slug).Take(&existing).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, errors.Wrapf(err, "failed to look up category %q", slug)
	}
	return existing.ID, true, nil
}

func importCategory(ctx context.Context, tx *gorm.DB, idx int, dto dtos.CategoryDTO, slugIDs map[string]uuid.UUID) (uuid.UUID, error) {
	var parentID *uuid.UUID
	if dto.ParentSlug != "" {
		id, ok, err := lookupCategoryID(tx, dto.ParentSlug, slugIDs)
		if err != nil {
			return uuid.Nil, err
		}
		if !ok {
			return uuid.Nil, NewValidationError("Unresolved category reference", utils.FieldIssue{
				Field:   fmt.Sprintf("categories[%d].parentSlug", idx),
				Message: fmt.Sprintf("no category with slug %q in the file or the catalog", dto.ParentSlug),
			})
		}
		parentID = &id
	}

	var existing models.Category
	err := tx.Where("slug = ?", dto.Slug).Take(&existing).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		created := models.Category{
			Name:        dto.Name,
			Slug:        dto.Slug,
			Description: dto.Description,
			ImageURL:    dto.ImageURL,
			ParentID:    parentID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return uuid.Nil, errors.Wrapf(err, "failed to create category %q", dto.Slug)
		}
		return created.ID, nil
	case err != nil:
		return uuid.Nil, errors.Wrapf(err, "failed to look up category %q", dto.Slug)
	}

	if parentID != nil {
		cycle, err := WouldCreateCycle(ctx, tx, existing.ID, *parentID)
		if err != nil {
			return uuid.Nil, err
		}
		if cycle {
			return uuid.Nil, errors.Wrapf(ErrCycle, "category %q under %q", dto.Slug, dto.ParentSlug)
		}
	}

	err = tx.Model(&existing).
		Select("name", "description", "image_url", "parent_id").
		Updates(models.Category{
			Name:        dto.Name,
			Description: dto.Description,
			ImageURL:    dto.ImageURL,
			ParentID:    parentID,
		}).Error
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "failed to update category %q", dto.Slug)
	}
	return existing.ID, nil
}

func importTrend(tx *gorm.DB, dto dtos.TrendDTO, slugIDs map[string]uuid.UUID) error {
	var categoryID *uuid.UUID
	if dto.CategorySlug != "" {
		id, ok, err := lookupCategoryID(tx, dto.CategorySlug, slugIDs)
		if err != nil {
			return err
		}
		if ok {
			categoryID = &id
		}
	}

	trend := models.Trend{
		Title:          dto.Title,
		Description:    dto.Description,
		Type:           dto.Type,
		ImageURLs:      append([]string{}, dto.ImageURLs...),
		MainImageIndex: dto.MainImageIndex,
		CategoryID:     categoryID,
	}

	var existing models.Trend
	err := tx.Where("title = ?", dto.Title).Take(&existing).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Omit("Analytics").Create(&trend).Error; err != nil {
			return errors.Wrapf(err, "failed to create trend %q", dto.Title)
		}
	case err != nil:
		return errors.Wrapf(err, "failed to look up trend %q", dto.Title)
	default:
		trend.ID = existing.ID
		err := tx.Model(&existing).
			Select("description", "type", "image_urls", "main_image_index", "category_id").
			Updates(trend).Error
		if err != nil {
			return errors.Wrapf(err, "failed to update trend %q", dto.Title)
		}
	}

	if dto.Analytics == nil {
		return deleteAnalytics(tx, trendOwner, []uuid.UUID{trend.ID})
	}
	a, err := analyticsFromDTO(dto.Analytics)
	if err != nil {
		return NewValidationError(err.Error())
	}
	a.TrendID = &trend.ID
	return ReplaceAnalytics(tx, a)
}

func importColor(tx *gorm.DB, dto dtos.ColorDTO) error {
	color := models.ColorTrend{
		Name:       dto.Name,
		Hex:        dto.Hex,
		ImageURL:   dto.ImageURL,
		Popularity: dto.Popularity,
		Palette1:   dto.Palette1,
		Palette2:   dto.Palette2,
		Palette3:   dto.Palette3,
		Palette4:   dto.Palette4,
		Palette5:   dto.Palette5,
	}

	var existing models.ColorTrend
	err := tx.Where("name = ?", dto.Name).Take(&existing).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Omit("Analytics").Create(&color).Error; err != nil {
			return errors.Wrapf(err, "failed to create color %q", dto.Name)
		}
	case err != nil:
		return errors.Wrapf(err, "failed to look up color %q", dto.Name)
	default:
		color.ID = existing.ID
		err := tx.Model(&existing).
			Select("hex", "image_url", "popularity", "palette1", "palette2", "palette3", "palette4", "palette5").
			Updates(color).Error
		if err != nil {
			return errors.Wrapf(err, "failed to update color %q", dto.Name)
		}
	}

	if dto.Analytics == nil {
		return deleteAnalytics(tx, colorOwner, []uuid.UUID{color.ID})
	}
	a, err := analyticsFromDTO(dto.Analytics)
	if err != nil {
		return NewValidationError(err.Error())
	}
	a.ColorID = &color.ID
	return ReplaceAnalytics(tx, a)
}
