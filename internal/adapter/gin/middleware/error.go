package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "auth-service/pkg/errors"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody under the "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// AbortWithError writes err as a JSON error response and stops the chain.
// Unclassified errors are reported as 500 Internal Server Error.
func AbortWithError(c *gin.Context, err error) {
	status := apperrors.StatusOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Status:  status,
			Message: apperrors.MessageOf(err),
		},
	})
}
