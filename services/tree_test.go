package services

import (
	"context"
	"testing"

	"trendscope-backend/dtos"
	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWouldCreateCycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	a := seedCategory(t, db, "a", nil)
	b := seedCategory(t, db, "b", &a)
	c := seedCategory(t, db, "c", &b)
	other := seedCategory(t, db, "other", nil)

	tests := []struct {
		name     string
		category uuid.UUID
		parent   uuid.UUID
		want     bool
	}{
		{"own parent", a.ID, a.ID, true},
		{"under grandchild", a.ID, c.ID, true},
		{"under child", b.ID, c.ID, true},
		{"under unrelated root", a.ID, other.ID, false},
		{"leaf under root", c.ID, a.ID, false},
		{"missing parent", a.ID, uuid.New(), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WouldCreateCycle(ctx, db, tc.category, tc.parent)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWouldCreateCycleDetectsExistingLoop(t *testing.T) {
	db := newTestDB(t)

	x := seedCategory(t, db, "x", nil)
	y := seedCategory(t, db, "y", &x)
	require.NoError(t, db.Model(&x).Update("parent_id", y.ID).Error)
	unrelated := seedCategory(t, db, "unrelated", nil)

	got, err := WouldCreateCycle(context.Background(), db, unrelated.ID, x.ID)
	require.NoError(t, err)
	assert.True(t, got, "a loop already in the store must not spin forever")
}

func TestCategoryUpdateRejectsCycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewCategoryService(db)

	a := seedCategory(t, db, "a", nil)
	b := seedCategory(t, db, "b", &a)
	c := seedCategory(t, db, "c", &b)

	_, err := svc.Update(context.Background(), a.ID, dtos.CategoryRequest{Name: "a", Slug: "a", ParentID: &c.ID})
	assert.ErrorIs(t, err, ErrCycle)

	var reloaded models.Category
	require.NoError(t, db.First(&reloaded, "id = ?", a.ID).Error)
	assert.Nil(t, reloaded.ParentID, "parent must stay unchanged after a rejected move")
}
