package services

import (
	"context"

	"trendscope-backend/dtos"
	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Export reads the three collections concurrently and flattens them into the
// portable payload. References become slugs: parentSlug is omitted for roots
// and categorySlug is empty for orphaned trends.
func (s *BulkService) Export(ctx context.Context) (*dtos.BulkPayload, error) {
	var (
		categories []models.Category
		trends     []models.Trend
		colors     []models.ColorTrend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.DB.WithContext(gctx).Order("created_at, slug").Find(&categories).Error
		return errors.Wrap(err, "failed to read categories")
	})
	g.Go(func() error {
		err := s.DB.WithContext(gctx).Preload("Analytics").Order("created_at, title").Find(&trends).Error
		return errors.Wrap(err, "failed to read trends")
	})
	g.Go(func() error {
		err := s.DB.WithContext(gctx).Preload("Analytics").Order("created_at, name").Find(&colors).Error
		return errors.Wrap(err, "failed to read colors")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slugByID := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		slugByID[c.ID] = c.Slug
	}

	payload := &dtos.BulkPayload{
		Categories: make([]dtos.CategoryDTO, 0, len(categories)),
		Trends:     make([]dtos.TrendDTO, 0, len(trends)),
		Colors:     make([]dtos.ColorDTO, 0, len(colors)),
	}

	for _, c := range categories {
		dto := dtos.CategoryDTO{
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
			ImageURL:    c.ImageURL,
		}
		if c.ParentID != nil {
			dto.ParentSlug = slugByID[*c.ParentID]
		}
		payload.Categories = append(payload.Categories, dto)
	}

	for _, t := range trends {
		dto := dtos.TrendDTO{
			Title:          t.Title,
			Description:    t.Description,
			Type:           t.Type,
			ImageURLs:      append([]string{}, t.ImageURLs...),
			MainImageIndex: t.MainImageIndex,
			Analytics:      analyticsToDTO(t.Analytics),
		}
		if t.CategoryID != nil {
			dto.CategorySlug = slugByID[*t.CategoryID]
		}
		payload.Trends = append(payload.Trends, dto)
	}

	for _, c := range colors {
		payload.Colors = append(payload.Colors, dtos.ColorDTO{
			Name:       c.Name,
			Hex:        c.Hex,
			ImageURL:   c.ImageURL,
			Popularity: c.Popularity,
			Palette1:   c.Palette1,
			Palette2:   c.Palette2,
			Palette3:   c.Palette3,
			Palette4:   c.Palette4,
			Palette5:   c.Palette5,
			Analytics:  analyticsToDTO(c.Analytics),
		})
	}

	return payload, nil
}
