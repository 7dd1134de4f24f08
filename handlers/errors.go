package handlers

import (
	"errors"
	"net/http"

	"trendscope-backend/services"
	"trendscope-backend/spreadsheet"
	"trendscope-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// errorStatus maps a service error to its HTTP status and the message the
// client sees. Unknown errors become 500 with fallback as the message.
func errorStatus(err error, fallback string) (int, gin.H) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Issues) > 0 {
			body["issues"] = verr.Issues
		}
		return http.StatusBadRequest, body
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": "Not found"}
	case errors.Is(err, services.ErrCycle):
		return http.StatusBadRequest, gin.H{"error": services.ErrCycle.Error()}
	case errors.Is(err, services.ErrCategoryNotEmpty):
		return http.StatusBadRequest, gin.H{"error": services.ErrCategoryNotEmpty.Error()}
	case errors.Is(err, services.ErrMaintenanceInProgress):
		return http.StatusConflict, gin.H{"error": services.ErrMaintenanceInProgress.Error()}
	case errors.Is(err, spreadsheet.ErrNotConnected),
		errors.Is(err, spreadsheet.ErrTokenExpired),
		errors.Is(err, spreadsheet.ErrInvalidURL),
		errors.Is(err, spreadsheet.ErrNoValidData),
		errors.Is(err, spreadsheet.ErrFetch):
		return http.StatusBadRequest, gin.H{"error": "Spreadsheet import failed: " + err.Error()}
	case errors.Is(err, utils.ErrImageUnreachable):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	}
	return http.StatusInternalServerError, gin.H{"error": fallback}
}

// respondError writes err as a JSON error. Server-side failures are logged
// with the full cause; the client only gets the generic message.
func respondError(c *gin.Context, err error, notFound, failed string) {
	status, body := errorStatus(err, failed)
	if status == http.StatusNotFound && notFound != "" {
		body["error"] = notFound
	}
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(failed)
	}
	c.JSON(status, body)
}

// bindError reports a request body that failed binding or validation.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  utils.SanitizeValidationError(err),
		"issues": utils.ValidationIssues(err),
	})
}

// currentUserID returns the authenticated user's id, or uuid.Nil.
func currentUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

func parseID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
