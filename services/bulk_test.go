package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trendscope-backend/dtos"
	"trendscope-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCleanupOrphanAndTitleCountOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	cat := seedCategory(t, db, "cat", nil)
	seedTrend(t, db, "orphan", nil)
	seedTrend(t, db, "kept", &cat)

	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Trends: &dtos.TrendCleanup{Orphaned: true, Titles: []string{"orphan"}},
	})
	require.NoError(t, err)
	assert.Equal(t, dtos.BulkStats{Trends: 1}, stats)
	assert.Equal(t, int64(1), count(t, db, &models.Trend{}))
}

func TestCleanupCategorySlugAndOrphanOverlap(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	seedCategory(t, db, "lonely", nil)
	parent := seedCategory(t, db, "parent", nil)
	child := seedCategory(t, db, "child", &parent)
	trend := seedTrend(t, db, "under-parent", &parent)

	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Categories: &dtos.CategoryCleanup{Slugs: []string{"lonely", "parent"}, Orphaned: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Categories)

	var reloadedChild models.Category
	require.NoError(t, db.First(&reloadedChild, "id = ?", child.ID).Error)
	assert.Nil(t, reloadedChild.ParentID, "children of a deleted category become roots")

	var reloadedTrend models.Trend
	require.NoError(t, db.First(&reloadedTrend, "id = ?", trend.ID).Error)
	assert.Nil(t, reloadedTrend.CategoryID, "trends of a deleted category become orphans")
}

func TestCleanupAllCategoriesKeepsTrends(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	root := seedCategory(t, db, "root", nil)
	child := seedCategory(t, db, "child", &root)
	seedTrend(t, db, "one", &root)
	seedTrend(t, db, "two", &child)

	// The single-entity delete refuses this category...
	assert.ErrorIs(t, NewCategoryService(db).Delete(context.Background(), root.ID), ErrCategoryNotEmpty)

	// ...while the bulk path removes everything.
	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Categories: &dtos.CategoryCleanup{All: true, Slugs: []string{"ignored"}},
	})
	require.NoError(t, err)
	assert.Equal(t, dtos.BulkStats{Categories: 2}, stats)
	assert.Equal(t, int64(0), count(t, db, &models.Category{}))

	var orphaned int64
	db.Model(&models.Trend{}).Where("category_id IS NULL").Count(&orphaned)
	assert.Equal(t, int64(2), orphaned)
}

func TestCleanupCategoriesBeforeTrends(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	cat := seedCategory(t, db, "cat", nil)
	seedTrend(t, db, "t", &cat)

	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Categories: &dtos.CategoryCleanup{All: true},
		Trends:     &dtos.TrendCleanup{Orphaned: true},
	})
	require.NoError(t, err)
	assert.Equal(t, dtos.BulkStats{Categories: 1, Trends: 1}, stats)
}

func TestCleanupColorsRemovesAnalytics(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	seedColor(t, db, "Sage", true)
	seedColor(t, db, "Rust", false)
	seedColor(t, db, "Ink", false)

	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Colors: &dtos.ColorCleanup{Names: []string{"Sage", "Rust"}, Unused: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Colors)
	assert.Equal(t, int64(0), count(t, db, &models.Analytics{}))
}

func TestCleanupAtomicity(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Second, nil)

	trend := seedTrend(t, db, "doomed", nil)
	seedTrendAnalytics(t, db, trend, []time.Time{day(2024, 1, 1)}, []float64{1})
	seedColor(t, db, "Coral", false)

	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_color_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "color_trends" {
			_ = tx.AddError(errors.New("simulated color delete failure"))
		}
	})
	require.NoError(t, err)

	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{
		Trends: &dtos.TrendCleanup{All: true},
		Colors: &dtos.ColorCleanup{All: true},
	})
	require.Error(t, err)
	assert.Equal(t, dtos.BulkStats{}, stats)

	require.NoError(t, db.Callback().Delete().Remove("test:fail_color_delete"))
	assert.Equal(t, int64(1), count(t, db, &models.Trend{}), "trend deletion must be rolled back")
	assert.Equal(t, int64(1), count(t, db, &models.Analytics{}))
	assert.Equal(t, int64(1), count(t, db, &models.ColorTrend{}))
}

func TestCleanupTimeoutFailsWholeOperation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBulkService(db, time.Nanosecond, nil)
	seedTrend(t, db, "survivor", nil)

	time.Sleep(time.Millisecond)
	_, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{Trends: &dtos.TrendCleanup{All: true}})
	require.Error(t, err)
	assert.Equal(t, int64(1), count(t, db, &models.Trend{}))
}

func TestCleanupRejectsBadCutoff(t *testing.T) {
	svc := NewBulkService(newTestDB(t), time.Second, nil)

	_, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{Trends: &dtos.TrendCleanup{OlderThan: "last week"}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "trends.olderThan", ve.Issues[0].Field)
}

func TestCleanupHeldLock(t *testing.T) {
	db := newTestDB(t)
	locker := &LocalLocker{}
	svc := NewBulkService(db, time.Second, locker)
	seedTrend(t, db, "t", nil)

	release, err := locker.TryLock(context.Background())
	require.NoError(t, err)

	_, err = svc.Cleanup(context.Background(), dtos.CleanupOptions{Trends: &dtos.TrendCleanup{All: true}})
	assert.ErrorIs(t, err, ErrMaintenanceInProgress)
	_, err = svc.Import(context.Background(), &dtos.BulkPayload{})
	assert.ErrorIs(t, err, ErrMaintenanceInProgress)

	release()
	stats, err := svc.Cleanup(context.Background(), dtos.CleanupOptions{Trends: &dtos.TrendCleanup{All: true}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Trends)
}

func TestLocalLockerExclusive(t *testing.T) {
	locker := &LocalLocker{}
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	release, err := locker.TryLock(context.Background())
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r, err := locker.TryLock(context.Background()); err == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
				r()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, acquired)

	release()
	release() // releasing twice is harmless
	r, err := locker.TryLock(context.Background())
	require.NoError(t, err)
	r()
}
