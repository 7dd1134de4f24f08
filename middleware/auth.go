package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"trendscope-backend/models"
	"trendscope-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubscriptionMiddleware lets admins through and otherwise requires the
// user's subscription to be active right now. The subscription is read from
// the database so a revoked subscription takes effect before the token expires.
func SubscriptionMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("user_role"); role == models.RoleAdmin {
			c.Next()
			return
		}

		userID, ok := c.Get("user_id")
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		var user models.User
		err := db.WithContext(c.Request.Context()).Where("id = ?", userID.(uuid.UUID)).Take(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithError(err).Error("failed to load user for subscription check")
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "Active subscription required"})
			c.Abort()
			return
		}

		if !user.IsAdmin() && !user.HasActiveSubscription(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Active subscription required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
