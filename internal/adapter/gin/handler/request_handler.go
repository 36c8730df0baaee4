package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-service/internal/adapter/gin/middleware"
	apperrors "auth-service/pkg/errors"
)

// UploadResponse lists the files and form fields of a multipart request
type UploadResponse struct {
	Files  []middleware.UploadedFile `json:"files"`
	Fields any                       `json:"fields"`
}

// Echo handles POST /api/v1/test by returning the parsed, sanitized body
func Echo(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.Body(c))
}

// Upload handles POST /api/v1/upload
func Upload(c *gin.Context) {
	c.JSON(http.StatusOK, UploadResponse{
		Files:  middleware.Files(c),
		Fields: middleware.Body(c),
	})
}

// Health handles GET /health
func Health(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": service,
		})
	}
}

// NotFound renders unknown routes as a JSON 404
func NotFound(c *gin.Context) {
	middleware.AbortWithError(c, apperrors.ErrNotFound)
}
