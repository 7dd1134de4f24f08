package handlers

import (
	"net/http"

	"trendscope-backend/activity"
	"trendscope-backend/firebase"
	"trendscope-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UploadHandler struct {
	Storage  firebase.StorageClient
	Activity *activity.Recorder
}

func (h *UploadHandler) storageReady(c *gin.Context) bool {
	if h.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return false
	}
	return true
}

func folderOrDefault(folder string) (string, bool) {
	if folder == "" {
		return "trends", true
	}
	return folder, firebase.Folders[folder]
}

// UploadImage stores a multipart "image" file and returns its public URL.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if !h.storageReady(c) {
		return
	}
	folder, ok := folderOrDefault(c.PostForm("folder"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown upload folder"})
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if err := utils.ValidateFileUpload(fh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	url, err := h.Storage.UploadImage(c.Request.Context(), file, fh.Filename, fh.Header.Get("Content-Type"), folder)
	if err != nil {
		logrus.WithError(err).WithField("filename", fh.Filename).Error("image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	h.Activity.Log(currentUserID(c), "upload", "image", "", url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// RehostImage copies an external image into the bucket.
func (h *UploadHandler) RehostImage(c *gin.Context) {
	if !h.storageReady(c) {
		return
	}
	var req struct {
		URL    string `json:"url" binding:"required,url"`
		Folder string `json:"folder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	folder, ok := folderOrDefault(req.Folder)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown upload folder"})
		return
	}

	url, err := h.Storage.RehostImage(c.Request.Context(), req.URL, folder)
	if err != nil {
		logrus.WithError(err).WithField("source", req.URL).Warn("image rehost failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to copy image: " + err.Error()})
		return
	}

	h.Activity.Log(currentUserID(c), "rehost", "image", "", url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
