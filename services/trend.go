package services

import (
	"context"
	stderrors "errors"
	"strings"

	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/spreadsheet"
	"trendscope-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ImageVerifier confirms that image URLs are reachable.
type ImageVerifier interface {
	CheckAll(ctx context.Context, urls []string) error
}

// SheetFetcher turns a spreadsheet URL into an analytics series using the
// admin's Google access.
type SheetFetcher interface {
	FetchAndParse(ctx context.Context, adminID uuid.UUID, sheetURL string) (*spreadsheet.Series, error)
}

var errSheetsDisabled = NewValidationError("Spreadsheet import is not configured")

type TrendService struct {
	DB     *gorm.DB
	Images ImageVerifier
	Sheets SheetFetcher
}

type TrendFilter struct {
	CategorySlug string
	Type         string
	Page         int
	Limit        int
}

func (f *TrendFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (s *TrendService) List(ctx context.Context, f TrendFilter) ([]models.Trend, int64, error) {
	f.normalize()

	query := s.DB.WithContext(ctx).Model(&models.Trend{})
	if f.CategorySlug != "" {
		query = query.Where("category_id IN (?)",
			s.DB.Model(&models.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count trends")
	}

	var trends []models.Trend
	err := query.Preload("Category").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&trends).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list trends")
	}
	return trends, total, nil
}

func (s *TrendService) Get(ctx context.Context, id uuid.UUID) (*models.Trend, error) {
	var trend models.Trend
	err := s.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).Take(&trend).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load trend")
	}
	return &trend, nil
}

// Analytics returns the trend's series, or ErrNotFound when the trend or its
// series does not exist.
func (s *TrendService) Analytics(ctx context.Context, id uuid.UUID) (*models.Analytics, error) {
	var a models.Analytics
	err := s.DB.WithContext(ctx).Where("trend_id = ?", id).Take(&a).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analytics")
	}
	return &a, nil
}

func trendFromRequest(req dtos.TrendRequest) models.Trend {
	return models.Trend{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Type:           req.Type,
		ImageURLs:      append([]string{}, req.ImageURLs...),
		MainImageIndex: req.MainImageIndex,
		CategoryID:     req.CategoryID,
	}
}

func validateTrend(t *models.Trend) error {
	switch err := t.Validate(); err {
	case nil:
		return nil
	case models.ErrTrendNoImages:
		return NewValidationError("Invalid trend", utils.FieldIssue{Field: "imageUrls", Message: err.Error()})
	default:
		return NewValidationError("Invalid trend", utils.FieldIssue{Field: "mainImageIndex", Message: err.Error()})
	}
}

func (s *TrendService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check category")
	}
	if count == 0 {
		return NewValidationError("Category not found", utils.FieldIssue{Field: "categoryId", Message: "does not exist"})
	}
	return nil
}

// checkTitleFree keeps titles unique; bulk files address trends by title.
func (s *TrendService) checkTitleFree(ctx context.Context, title string, except uuid.UUID) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Trend{}).
		Where("title = ? AND id <> ?", title, except).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "failed to check title")
	}
	if count > 0 {
		return NewValidationError("Title already in use", utils.FieldIssue{Field: "title", Message: "is already used by another trend"})
	}
	return nil
}

func (s *TrendService) fetchSeries(ctx context.Context, adminID uuid.UUID, sheetURL string) (*spreadsheet.Series, error) {
	if sheetURL == "" {
		return nil, nil
	}
	if s.Sheets == nil {
		return nil, errSheetsDisabled
	}
	return s.Sheets.FetchAndParse(ctx, adminID, sheetURL)
}

// Create stores a new trend after every image URL answered. When the request
// names a spreadsheet its series becomes the trend's analytics; any failure
// before the insert leaves nothing behind.
func (s *TrendService) Create(ctx context.Context, adminID uuid.UUID, req dtos.TrendRequest) (*models.Trend, error) {
	trend := trendFromRequest(req)
	if err := validateTrend(&trend); err != nil {
		return nil, err
	}
	if err := s.checkTitleFree(ctx, trend.Title, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, trend.CategoryID); err != nil {
		return nil, err
	}
	if s.Images != nil {
		if err := s.Images.CheckAll(ctx, trend.ImageURLs); err != nil {
			return nil, err
		}
	}
	series, err := s.fetchSeries(ctx, adminID, req.SpreadsheetURL)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trend).Error; err != nil {
			return errors.Wrap(err, "failed to create trend")
		}
		if series == nil {
			return nil
		}
		a := series.Analytics()
		a.TrendID = &trend.ID
		trend.Analytics = a
		return ReplaceAnalytics(tx, a)
	})
	if err != nil {
		return nil, err
	}
	return &trend, nil
}

// Update replaces the trend's fields. A spreadsheet URL replaces its
// analytics wholesale; without one the stored analytics are kept.
func (s *TrendService) Update(ctx context.Context, adminID, id uuid.UUID, req dtos.TrendRequest) (*models.Trend, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := trendFromRequest(req)
	if err := validateTrend(&updated); err != nil {
		return nil, err
	}
	if err := s.checkTitleFree(ctx, updated.Title, id); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, updated.CategoryID); err != nil {
		return nil, err
	}
	series, err := s.fetchSeries(ctx, adminID, req.SpreadsheetURL)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(existing).
			Select("title", "description", "type", "image_urls", "main_image_index", "category_id").
			Updates(updated).Error
		if err != nil {
			return errors.Wrap(err, "failed to update trend")
		}
		if series == nil {
			return nil
		}
		a := series.Analytics()
		a.TrendID = &id
		return ReplaceAnalytics(tx, a)
	})
	if err != nil {
		return nil, err
	}

	trend, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if trend.Analytics, err = s.Analytics(ctx, id); err != nil && !stderrors.Is(err, ErrNotFound) {
		return nil, err
	}
	return trend, nil
}

// Delete removes the trend and its analytics and returns what was deleted so
// callers can clean up stored images.
func (s *TrendService) Delete(ctx context.Context, id uuid.UUID) (*models.Trend, error) {
	trend, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAnalytics(tx, trendOwner, []uuid.UUID{id}); err != nil {
			return err
		}
		return errors.Wrap(tx.Where("id = ?", id).Delete(&models.Trend{}).Error, "failed to delete trend")
	})
	if err != nil {
		return nil, err
	}
	return trend, nil
}
