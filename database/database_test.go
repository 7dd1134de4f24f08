package database

import (
	"os"
	"testing"

	"trendscope-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "categories", "trends", "color_trends", "analytics", "google_tokens", "activity_logs"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := Migrate(db); err != nil {
		t.Errorf("expected second migration to succeed, got %v", err)
	}
}

func TestCreateDefaultAdminNew(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "testadmin@test.com")
	os.Setenv("ADMIN_PASSWORD", "testpassword123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "testadmin@test.com").First(&user).Error; err != nil {
		t.Fatal("admin user not created")
	}
	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got '%s'", user.Role)
	}
}

func TestCreateDefaultAdminAlreadyExists(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "existing@test.com")
	os.Setenv("ADMIN_PASSWORD", "password123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	// Create admin first time
	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	// Second call should skip (no error)
	err = CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "existing@test.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}

func TestCreateDefaultAdminDefaultPassword(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "random@test.com")
	os.Unsetenv("ADMIN_PASSWORD")
	defer os.Unsetenv("ADMIN_EMAIL")

	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "random@test.com").First(&user).Error; err != nil {
		t.Fatal("admin not created with default password")
	}
}

func TestCreateDefaultAdminHasActiveSubscription(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "subscribed@test.com")
	os.Setenv("ADMIN_PASSWORD", "secret-pass")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}

	var user models.User
	db.Where("email = ?", "subscribed@test.com").First(&user)
	if user.SubscriptionStatus != models.SubscriptionActive {
		t.Errorf("expected admin subscription to be active, got %q", user.SubscriptionStatus)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret-pass")); err != nil {
		t.Error("expected stored password to be a bcrypt hash of ADMIN_PASSWORD")
	}
}
