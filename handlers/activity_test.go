package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendscope-backend/activity"
	"trendscope-backend/middleware"
	"trendscope-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupActivityRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	activityHandler := &ActivityHandler{DB: db}

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/activity", activityHandler.GetActivity)
	return r
}

func TestGetActivityNewestFirst(t *testing.T) {
	db := freshDB()
	router := setupActivityRouter(db)
	admin, token := seedAdmin(db)

	sink := &activity.GormSink{DB: db}
	base := time.Now().Add(-time.Hour)
	batch := []models.ActivityLog{
		{UserID: &admin.ID, Action: "create", EntityType: "trend", Details: "first", CreatedAt: base},
		{UserID: &admin.ID, Action: "delete", EntityType: "color", Details: "second", CreatedAt: base.Add(time.Minute)},
		{Action: "bulk_export", EntityType: "bulk", Details: "third", CreatedAt: base.Add(2 * time.Minute)},
	}
	if err := sink.Write(context.Background(), batch); err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/activity?limit=2", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	logs := parseResponseArray(w)
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].(map[string]interface{})["details"] != "third" {
		t.Errorf("expected newest entry first, got %v", logs[0])
	}
}

func TestGetActivityRequiresAdmin(t *testing.T) {
	db := freshDB()
	router := setupActivityRouter(db)
	_, token := seedTestUser(db, "user@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/activity", nil, token))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}
}
