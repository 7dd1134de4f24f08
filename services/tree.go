package services

import (
	"context"
	stderrors "errors"

	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// WouldCreateCycle reports whether giving categoryID the parent
// proposedParentID would make the category its own ancestor. It walks up from
// the proposed parent one parent_id lookup at a time, so it costs O(depth)
// reads. A repeated id means the stored tree already has a cycle and is also
// reported as true. A missing row ends the walk like a root does.
func WouldCreateCycle(ctx context.Context, db *gorm.DB, categoryID, proposedParentID uuid.UUID) (bool, error) {
	seen := make(map[uuid.UUID]bool)
	current := proposedParentID

	for {
		if current == categoryID || seen[current] {
			return true, nil
		}
		seen[current] = true

		var row struct {
			ParentID *uuid.UUID
		}
		err := db.WithContext(ctx).
			Model(&models.Category{}).
			Select("parent_id").
			Where("id = ?", current).
			Take(&row).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, "failed to read category parent")
		}
		if row.ParentID == nil {
			return false, nil
		}
		current = *row.ParentID
	}
}
