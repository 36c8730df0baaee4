package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/pkg/logger"
	"auth-service/pkg/security"
)

// Sanitize strips keys that start with '$' or contain '.' from the parsed
// body and from the query string.
func Sanitize(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fromBody, fromQuery bool

		if body, ok := c.Get(BodyKey); ok {
			_, fromBody = security.Sanitize(body)
		}

		query := c.Request.URL.Query()
		if security.SanitizeValues(query) {
			c.Request.URL.RawQuery = query.Encode()
			fromQuery = true
		}

		if fromBody || fromQuery {
			logger.WithContext(c.Request.Context(), log).Warn("removed prohibited keys from request",
				zap.String("path", c.Request.URL.Path),
				zap.Bool("body", fromBody),
				zap.Bool("query", fromQuery),
			)
		}
		c.Next()
	}
}
