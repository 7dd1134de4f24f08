package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendscope-backend/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]string{
		"email":    "newuser@test.com",
		"password": "password123",
		"name":     "New User",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected token in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["email"] != "newuser@test.com" {
		t.Errorf("expected email newuser@test.com, got %v", user["email"])
	}
	if user["role"] != models.RoleUser {
		t.Errorf("expected role user, got %v", user["role"])
	}
	if user["hasActiveSubscription"] != false {
		t.Errorf("expected new users to have no subscription, got %v", user["hasActiveSubscription"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "existing@test.com", models.RoleUser)

	body := map[string]string{
		"email":    "existing@test.com",
		"password": "password123",
		"name":     "Duplicate User",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterValidationShortPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]string{
		"email":    "short@test.com",
		"password": "short",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	issues, ok := resp["issues"].([]interface{})
	if !ok || len(issues) != 1 {
		t.Fatalf("expected one itemized issue, got %v", resp["issues"])
	}
	if issues[0].(map[string]interface{})["field"] != "password" {
		t.Errorf("expected issue on password, got %v", issues[0])
	}
}

func TestRegisterEmptyBody(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", map[string]string{}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPasswordIsHashed(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]string{
		"email":    "hash@test.com",
		"password": "password123",
		"name":     "Hash Test",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	db.Where("email = ?", "hash@test.com").First(&user)

	if user.Password == "password123" {
		t.Error("password was stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
		t.Error("stored password is not a valid bcrypt hash of the original password")
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "login@test.com", models.RoleUser)

	body := map[string]string{
		"email":    "login@test.com",
		"password": "password123",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected token in response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "wrongpwd@test.com", models.RoleUser)

	body := map[string]string{
		"email":    "wrongpwd@test.com",
		"password": "wrongpassword",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["error"] != "Invalid credentials" {
		t.Errorf("expected 'Invalid credentials', got %v", resp["error"])
	}
}

func TestGetProfileSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, token := seedUser(db, "profile@test.com", models.RoleUser, models.SubscriptionActive)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["email"] != user.Email {
		t.Errorf("expected email %s, got %v", user.Email, resp["email"])
	}
	if resp["hasActiveSubscription"] != true {
		t.Errorf("expected active subscription, got %v", resp["hasActiveSubscription"])
	}
}

func TestGetProfileUnauthorized(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/auth/profile", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetProfileUserNotFoundInDB(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, token := seedTestUser(db, "deleted@test.com", models.RoleUser)
	db.Delete(&models.User{}, "id = ?", user.ID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestGetProfileNoUserIDInContext tests the unauthorized branch when user_id
// is not present in context (handler called without auth middleware).
func TestGetProfileNoUserIDInContext(t *testing.T) {
	db := freshDB()
	r := gin.New()
	authHandler := &AuthHandler{DB: db}
	r.GET("/api/auth/profile", authHandler.GetProfile)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/auth/profile", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateSubscriptionGrantsAndRevokes(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedAdmin(db)
	user, _ := seedTestUser(db, "viewer@test.com", models.RoleUser)
	path := "/api/admin/users/" + user.ID.String() + "/subscription"

	endsAt := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", path, map[string]interface{}{"status": "active", "endsAt": endsAt}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.User
	db.First(&stored, "id = ?", user.ID)
	if !stored.HasActiveSubscription(time.Now()) {
		t.Fatalf("expected active subscription, got %+v", stored)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", path, map[string]interface{}{"status": "inactive"}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	db.First(&stored, "id = ?", user.ID)
	if stored.HasActiveSubscription(time.Now()) || stored.SubscriptionEndsAt != nil {
		t.Errorf("expected revoked subscription, got %+v", stored)
	}
}

func TestUpdateSubscriptionRejectsUnknownStatus(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedAdmin(db)
	user, _ := seedTestUser(db, "viewer@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+user.ID.String()+"/subscription",
		map[string]string{"status": "lifetime"}, adminToken))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateSubscriptionRequiresAdmin(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, token := seedTestUser(db, "sneaky@test.com", models.RoleUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/users/"+user.ID.String()+"/subscription",
		map[string]string{"status": "active"}, token))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListUsersFiltersBySubscription(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, adminToken := seedAdmin(db)
	seedUser(db, "paid@test.com", models.RoleUser, models.SubscriptionActive)
	seedUser(db, "free@test.com", models.RoleUser, models.SubscriptionInactive)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/admin/users?subscription=active", nil, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["total"] != float64(1) {
		t.Errorf("expected 1 active subscriber, got %v", resp["total"])
	}
}

func TestSaveGoogleTokenUpserts(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	admin, adminToken := seedAdmin(db)
	body := map[string]interface{}{
		"accessToken": "ya29.first",
		"expiresAt":   time.Now().Add(time.Hour),
	}

	for _, access := range []string{"ya29.first", "ya29.second"} {
		body["accessToken"] = access
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("PUT", "/api/admin/google/token", body, adminToken))
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	}

	var tokens []models.GoogleToken
	db.Where("user_id = ?", admin.ID).Find(&tokens)
	if len(tokens) != 1 || tokens[0].AccessToken != "ya29.second" {
		t.Errorf("expected a single replaced token, got %+v", tokens)
	}
}
