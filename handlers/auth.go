package handlers

import (
	"net/http"
	"strconv"
	"time"

	"trendscope-backend/activity"
	"trendscope-backend/dtos"
	"trendscope-backend/models"
	"trendscope-backend/spreadsheet"
	"trendscope-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *spreadsheet.GormTokenStore
	Activity *activity.Recorder
}

func userResponse(user *models.User) gin.H {
	return gin.H{
		"id":                    user.ID,
		"email":                 user.Email,
		"name":                  user.Name,
		"role":                  user.Role,
		"subscriptionStatus":    user.SubscriptionStatus,
		"subscriptionEndsAt":    user.SubscriptionEndsAt,
		"hasActiveSubscription": user.IsAdmin() || user.HasActiveSubscription(time.Now()),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:              req.Email,
		Password:           string(hashedPassword),
		Name:               req.Name,
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionInactive,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		logrus.WithError(err).Error("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userResponse(&user))
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("subscription"); status != "" {
		query = query.Where("subscription_status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// UpdateSubscription grants or revokes a user's analytics subscription.
func (h *AuthHandler) UpdateSubscription(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dtos.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", id).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	endsAt := req.EndsAt
	if req.Status == models.SubscriptionInactive {
		endsAt = nil
	}
	err := h.DB.Model(&user).
		Select("subscription_status", "subscription_ends_at").
		Updates(models.User{SubscriptionStatus: req.Status, SubscriptionEndsAt: endsAt}).Error
	if err != nil {
		logrus.WithError(err).Error("failed to update subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}
	user.SubscriptionStatus = req.Status
	user.SubscriptionEndsAt = endsAt

	h.Activity.Log(currentUserID(c), "subscription_"+req.Status, "user", user.ID.String(), user.Email)
	c.JSON(http.StatusOK, userResponse(&user))
}

// SaveGoogleToken stores the Google access the calling admin obtained from
// the sign-in flow, used later to read spreadsheets on their behalf.
func (h *AuthHandler) SaveGoogleToken(c *gin.Context) {
	var req struct {
		AccessToken  string    `json:"accessToken" binding:"required"`
		RefreshToken string    `json:"refreshToken"`
		TokenType    string    `json:"tokenType"`
		ExpiresAt    time.Time `json:"expiresAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tok := models.GoogleToken{
		UserID:       currentUserID(c),
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenType:    req.TokenType,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := h.Tokens.Save(c.Request.Context(), &tok); err != nil {
		respondError(c, err, "", "Failed to save Google token")
		return
	}

	h.Activity.Log(tok.UserID, "connect", "google_token", tok.ID.String(), "")
	c.JSON(http.StatusOK, gin.H{"message": "Google account connected", "expiresAt": tok.ExpiresAt})
}
