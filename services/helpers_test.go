package services

import (
	"context"
	"testing"
	"time"

	"trendscope-backend/models"
	"trendscope-backend/spreadsheet"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, slug string, parent *models.Category) models.Category {
	t.Helper()
	c := models.Category{Name: slug, Slug: slug}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedTrend(t *testing.T, db *gorm.DB, title string, category *models.Category) models.Trend {
	t.Helper()
	tr := models.Trend{Title: title, ImageURLs: []string{"https://img.test/" + title + ".jpg"}}
	if category != nil {
		tr.CategoryID = &category.ID
	}
	require.NoError(t, db.Create(&tr).Error)
	return tr
}

func seedColor(t *testing.T, db *gorm.DB, name string, withAnalytics bool) models.ColorTrend {
	t.Helper()
	c := models.ColorTrend{Name: name, Hex: "#112233", Popularity: 50}
	require.NoError(t, db.Create(&c).Error)
	if withAnalytics {
		require.NoError(t, db.Create(&models.Analytics{
			Dates:   []time.Time{day(2024, 1, 1)},
			Values:  []float64{10},
			ColorID: &c.ID,
		}).Error)
	}
	return c
}

func seedTrendAnalytics(t *testing.T, db *gorm.DB, trend models.Trend, dates []time.Time, values []float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Analytics{Dates: dates, Values: values, TrendID: &trend.ID}).Error)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

type fakeSheets struct {
	series *spreadsheet.Series
	err    error
	calls  int
}

func (f *fakeSheets) FetchAndParse(ctx context.Context, adminID uuid.UUID, sheetURL string) (*spreadsheet.Series, error) {
	f.calls++
	return f.series, f.err
}

type fakeImages struct {
	err     error
	checked []string
}

func (f *fakeImages) CheckAll(ctx context.Context, urls []string) error {
	f.checked = append(f.checked, urls...)
	return f.err
}
