package handlers

import (
	"errors"
	"net/http"

	"newsroom-cms/helper"
	"newsroom-cms/middleware"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

// UploadHandler answers with a bare {imageUrl} / {error} body instead of the
// response envelope; the article editor posts to it directly.
type UploadHandler struct {
	uploadService services.UploadService
	field         string
	maxSize       int64
	Helper        *helper.HTTPHelper
}

func NewUploadHandler(uploadService services.UploadService, field string, maxSize int64, h *helper.HTTPHelper) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, field: field, maxSize: maxSize, Helper: h}
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	// Leave room for the multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)

	file, err := c.FormFile(h.field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
		return
	}

	imageURL, err := h.uploadService.SaveImage(c.Request.Context(), middleware.Actor(c), file)
	if err != nil {
		status := h.Helper.GetStatusCode(err)
		if status == http.StatusInternalServerError {
			h.Helper.Log.Error().Err(err).Msg("Image upload failed")
			c.JSON(status, gin.H{"error": "could not store image"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}
