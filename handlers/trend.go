package handlers

import (
	"net/http"
	"strconv"

	"trendscope-backend/activity"
	"trendscope-backend/dtos"
	"trendscope-backend/firebase"
	"trendscope-backend/services"

	"github.com/gin-gonic/gin"
)

type TrendHandler struct {
	Service  *services.TrendService
	Storage  firebase.StorageClient
	Activity *activity.Recorder
}

func (h *TrendHandler) GetTrends(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := services.TrendFilter{
		CategorySlug: c.Query("category"),
		Type:         c.Query("type"),
		Page:         page,
		Limit:        limit,
	}
	trends, total, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "", "Failed to fetch trends")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trends": trends,
		"total":  total,
		"page":   page,
	})
}

func (h *TrendHandler) GetTrend(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	trend, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Trend not found", "Failed to fetch trend")
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (h *TrendHandler) GetTrendAnalytics(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	analytics, err := h.Service.Analytics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Analytics not found", "Failed to fetch analytics")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *TrendHandler) CreateTrend(c *gin.Context) {
	var req dtos.TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	trend, err := h.Service.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err, "", "Failed to create trend")
		return
	}

	h.Activity.Log(currentUserID(c), "create", "trend", trend.ID.String(), trend.Title)
	c.JSON(http.StatusCreated, trend)
}

func (h *TrendHandler) UpdateTrend(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dtos.TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	trend, err := h.Service.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		respondError(c, err, "Trend not found", "Failed to update trend")
		return
	}

	h.Activity.Log(currentUserID(c), "update", "trend", trend.ID.String(), trend.Title)
	c.JSON(http.StatusOK, trend)
}

func (h *TrendHandler) DeleteTrend(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	trend, err := h.Service.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Trend not found", "Failed to delete trend")
		return
	}

	firebase.DeleteImages(c.Request.Context(), h.Storage, trend.ImageURLs)
	h.Activity.Log(currentUserID(c), "delete", "trend", id.String(), trend.Title)
	c.JSON(http.StatusOK, gin.H{"message": "Trend deleted successfully"})
}
