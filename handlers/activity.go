package handlers

import (
	"net/http"
	"strconv"

	"trendscope-backend/activity"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	DB *gorm.DB
}

// GetActivity lists recent admin activity, newest first.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := activity.Recent(c.Request.Context(), h.DB, limit)
	if err != nil {
		respondError(c, err, "", "Failed to fetch activity")
		return
	}
	c.JSON(http.StatusOK, logs)
}
