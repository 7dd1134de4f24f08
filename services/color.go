package services

import (
	"context"
	stderrors "errors"
	"strings"

	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ColorService struct {
	DB     *gorm.DB
	Sheets SheetFetcher
}

func (s *ColorService) List(ctx context.Context) ([]models.ColorTrend, error) {
	var colors []models.ColorTrend
	err := s.DB.WithContext(ctx).Order("popularity DESC, name").Find(&colors).Error
	return colors, errors.Wrap(err, "failed to list colors")
}

func (s *ColorService) Get(ctx context.Context, id uuid.UUID) (*models.ColorTrend, error) {
	var color models.ColorTrend
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&color).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load color")
	}
	return &color, nil
}

func (s *ColorService) Analytics(ctx context.Context, id uuid.UUID) (*models.Analytics, error) {
	var a models.Analytics
	err := s.DB.WithContext(ctx).Where("color_id = ?", id).Take(&a).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analytics")
	}
	return &a, nil
}

func colorFromRequest(req dtos.ColorRequest) models.ColorTrend {
	return models.ColorTrend{
		Name:       strings.TrimSpace(req.Name),
		Hex:        req.Hex,
		ImageURL:   req.ImageURL,
		Popularity: req.Popularity,
		Palette1:   req.Palette1,
		Palette2:   req.Palette2,
		Palette3:   req.Palette3,
		Palette4:   req.Palette4,
		Palette5:   req.Palette5,
	}
}

// checkNameFree keeps color names unique; bulk files address colors by name.
func (s *ColorService) checkNameFree(ctx context.Context, name string, except uuid.UUID) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ColorTrend{}).
		Where("name = ? AND id <> ?", name, except).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "failed to check name")
	}
	if count > 0 {
		return NewValidationError("Name already in use", utils.FieldIssue{Field: "name", Message: "is already used by another color"})
	}
	return nil
}

func (s *ColorService) Create(ctx context.Context, req dtos.ColorRequest) (*models.ColorTrend, error) {
	color := colorFromRequest(req)
	if !models.ValidHex(color.Hex) {
		return nil, NewValidationError("Invalid color", hexIssue)
	}
	if err := s.checkNameFree(ctx, color.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&color).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create color")
	}
	return &color, nil
}

func (s *ColorService) Update(ctx context.Context, id uuid.UUID, req dtos.ColorRequest) (*models.ColorTrend, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := colorFromRequest(req)
	if !models.ValidHex(updated.Hex) {
		return nil, NewValidationError("Invalid color", hexIssue)
	}
	if err := s.checkNameFree(ctx, updated.Name, id); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Model(existing).
		Select("name", "hex", "image_url", "popularity", "palette1", "palette2", "palette3", "palette4", "palette5").
		Updates(updated).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to update color")
	}
	return s.Get(ctx, id)
}

// Delete removes the color and its analytics and returns what was deleted.
func (s *ColorService) Delete(ctx context.Context, id uuid.UUID) (*models.ColorTrend, error) {
	color, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAnalytics(tx, colorOwner, []uuid.UUID{id}); err != nil {
			return err
		}
		return errors.Wrap(tx.Where("id = ?", id).Delete(&models.ColorTrend{}).Error, "failed to delete color")
	})
	if err != nil {
		return nil, err
	}
	return color, nil
}

// ImportSpreadsheet replaces the color's analytics with the series read from
// sheetURL. The old series is only removed once the new one parsed.
func (s *ColorService) ImportSpreadsheet(ctx context.Context, adminID, id uuid.UUID, sheetURL string) (*models.ColorTrend, error) {
	color, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Sheets == nil {
		return nil, errSheetsDisabled
	}
	series, err := s.Sheets.FetchAndParse(ctx, adminID, sheetURL)
	if err != nil {
		return nil, err
	}

	a := series.Analytics()
	a.ColorID = &color.ID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ReplaceAnalytics(tx, a)
	})
	if err != nil {
		return nil, err
	}
	color.Analytics = a
	return color, nil
}
