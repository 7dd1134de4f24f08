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

type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

// Tree returns every category nested under its root.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	var flat []models.Category
	if err := s.DB.WithContext(ctx).Order("name").Find(&flat).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}
	return models.BuildCategoryTree(flat), nil
}

// GetBySlug returns the category with its direct children and trends.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.DB.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Trends", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Where("slug = ?", slug).
		Take(&category).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load category")
	}
	return &category, nil
}

func (s *CategoryService) find(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&category).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load category")
	}
	return &category, nil
}

func (s *CategoryService) checkSlugFree(ctx context.Context, slug string, except uuid.UUID) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Where("slug = ? AND id <> ?", slug, except).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "failed to check slug")
	}
	if count > 0 {
		return NewValidationError("Slug already in use", utils.FieldIssue{Field: "slug", Message: "is already used by another category"})
	}
	return nil
}

func (s *CategoryService) checkParentExists(ctx context.Context, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if _, err := s.find(ctx, *parentID); err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return NewValidationError("Parent category not found", utils.FieldIssue{Field: "parentId", Message: "does not exist"})
		}
		return err
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, req dtos.CategoryRequest) (*models.Category, error) {
	slug := strings.TrimSpace(req.Slug)
	if err := s.checkSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkParentExists(ctx, req.ParentID); err != nil {
		return nil, err
	}

	category := models.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
	}
	if err := s.DB.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}
	return &category, nil
}

// Update replaces the category's fields. Moving it under one of its own
// descendants fails with ErrCycle and leaves the stored parent unchanged.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req dtos.CategoryRequest) (*models.Category, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(req.Slug)
	if err := s.checkSlugFree(ctx, slug, id); err != nil {
		return nil, err
	}
	if err := s.checkParentExists(ctx, req.ParentID); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		cycle, err := WouldCreateCycle(ctx, s.DB, id, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if cycle {
			return nil, ErrCycle
		}
	}

	err = s.DB.WithContext(ctx).Model(category).
		Select("name", "slug", "description", "image_url", "parent_id").
		Updates(models.Category{
			Name:        strings.TrimSpace(req.Name),
			Slug:        slug,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			ParentID:    req.ParentID,
		}).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}
	return s.find(ctx, id)
}

// Delete removes a category that has neither subcategories nor trends.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&models.Category{}).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errors.Wrap(err, "failed to load category")
		}

		var children, trends int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return errors.Wrap(err, "failed to count subcategories")
		}
		if err := tx.Model(&models.Trend{}).Where("category_id = ?", id).Count(&trends).Error; err != nil {
			return errors.Wrap(err, "failed to count trends")
		}
		if children > 0 || trends > 0 {
			return ErrCategoryNotEmpty
		}

		return errors.Wrap(tx.Where("id = ?", id).Delete(&models.Category{}).Error, "failed to delete category")
	})
}
