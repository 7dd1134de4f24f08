package handlers

import (
	"fmt"
	"net/http"

	"trendscope-backend/activity"
	"trendscope-backend/cache"
	"trendscope-backend/dtos"
	"trendscope-backend/services"
	"trendscope-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxBulkBody caps import and cleanup request bodies.
const maxBulkBody = 32 << 20

type BulkHandler struct {
	Service  *services.BulkService
	Cache    *cache.TreeCache
	Activity *activity.Recorder
}

// bulkFailure reports a failed bulk run. Server-side failures carry the cause
// in details next to the generic error.
func bulkFailure(c *gin.Context, err error, failed string) {
	status, body := errorStatus(err, failed)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(failed)
		body["details"] = err.Error()
	}
	body["success"] = false
	body["stats"] = dtos.BulkStats{}
	c.JSON(status, body)
}

func bulkBodyError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   utils.SanitizeValidationError(err),
		"issues":  utils.ValidationIssues(err),
		"stats":   dtos.BulkStats{},
	})
}

// Cleanup runs a bulk delete described by dtos.CleanupOptions.
func (h *BulkHandler) Cleanup(c *gin.Context) {
	var opts dtos.CleanupOptions
	if err := dtos.DecodeStrict(http.MaxBytesReader(c.Writer, c.Request.Body, maxBulkBody), &opts); err != nil {
		bulkBodyError(c, err)
		return
	}
	if err := utils.ValidateStruct(&opts); err != nil {
		bulkBodyError(c, err)
		return
	}
	if opts.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Nothing selected for cleanup",
			"stats":   dtos.BulkStats{},
		})
		return
	}

	stats, err := h.Service.Cleanup(c.Request.Context(), opts)
	if err != nil {
		bulkFailure(c, err, "Bulk cleanup failed")
		return
	}

	h.Cache.Invalidate(c.Request.Context())
	h.Activity.Log(currentUserID(c), "bulk_cleanup", "bulk", "", statsDetails(stats))
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *BulkHandler) Export(c *gin.Context) {
	payload, err := h.Service.Export(c.Request.Context())
	if err != nil {
		respondError(c, err, "", "Bulk export failed")
		return
	}

	stats := payload.Stats()
	h.Activity.Log(currentUserID(c), "bulk_export", "bulk", "", statsDetails(stats))
	c.JSON(http.StatusOK, dtos.ExportResponse{Success: true, Data: payload, Stats: stats})
}

// Import upserts an exported document. The body may be the bare payload or
// the whole export response.
func (h *BulkHandler) Import(c *gin.Context) {
	payload, err := dtos.DecodeBulkPayload(http.MaxBytesReader(c.Writer, c.Request.Body, maxBulkBody))
	if err != nil {
		bulkBodyError(c, err)
		return
	}

	stats, err := h.Service.Import(c.Request.Context(), payload)
	if err != nil {
		bulkFailure(c, err, "Bulk import failed")
		return
	}

	h.Cache.Invalidate(c.Request.Context())
	h.Activity.Log(currentUserID(c), "bulk_import", "bulk", "", statsDetails(stats))
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func statsDetails(s dtos.BulkStats) string {
	return fmt.Sprintf("categories=%d trends=%d colors=%d", s.Categories, s.Trends, s.Colors)
}
