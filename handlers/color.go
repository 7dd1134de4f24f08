package handlers

import (
	"net/http"

	"trendscope-backend/activity"
	"trendscope-backend/dtos"
	"trendscope-backend/firebase"
	"trendscope-backend/services"

	"github.com/gin-gonic/gin"
)

type ColorHandler struct {
	Service  *services.ColorService
	Storage  firebase.StorageClient
	Activity *activity.Recorder
}

func (h *ColorHandler) GetColors(c *gin.Context) {
	colors, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "", "Failed to fetch colors")
		return
	}
	c.JSON(http.StatusOK, colors)
}

func (h *ColorHandler) GetColor(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	color, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Color not found", "Failed to fetch color")
		return
	}
	c.JSON(http.StatusOK, color)
}

func (h *ColorHandler) GetColorAnalytics(c *gin.Context) {
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

func (h *ColorHandler) CreateColor(c *gin.Context) {
	var req dtos.ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	color, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "", "Failed to create color")
		return
	}

	h.Activity.Log(currentUserID(c), "create", "color", color.ID.String(), color.Name)
	c.JSON(http.StatusCreated, color)
}

func (h *ColorHandler) UpdateColor(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dtos.ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	color, err := h.Service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Color not found", "Failed to update color")
		return
	}

	h.Activity.Log(currentUserID(c), "update", "color", color.ID.String(), color.Name)
	c.JSON(http.StatusOK, color)
}

func (h *ColorHandler) DeleteColor(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	color, err := h.Service.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Color not found", "Failed to delete color")
		return
	}

	if color.ImageURL != "" {
		firebase.DeleteImages(c.Request.Context(), h.Storage, []string{color.ImageURL})
	}
	h.Activity.Log(currentUserID(c), "delete", "color", id.String(), color.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Color deleted successfully"})
}

// ImportColorSpreadsheet replaces the color's analytics with a sheet's data.
func (h *ColorHandler) ImportColorSpreadsheet(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req dtos.SpreadsheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	color, err := h.Service.ImportSpreadsheet(c.Request.Context(), currentUserID(c), id, req.SpreadsheetURL)
	if err != nil {
		respondError(c, err, "Color not found", "Failed to import spreadsheet")
		return
	}

	h.Activity.Log(currentUserID(c), "import_spreadsheet", "color", id.String(), req.SpreadsheetURL)
	c.JSON(http.StatusOK, color)
}
