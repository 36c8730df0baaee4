package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"auth-service/api"
	"auth-service/internal/adapter/gin/handler"
	"auth-service/internal/adapter/gin/middleware"
	"auth-service/internal/config"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	authHandler *handler.AuthHandler,
	cfg config.HTTPConfig,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	_ = router.SetTrustedProxies(nil)

	// Global middleware, in request order
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	if cfg.RequestLogging {
		router.Use(middleware.Logger(log))
	}
	if cfg.SecurityHeadersEnabled {
		router.Use(middleware.SecurityHeaders("/swagger/"))
	}
	if cfg.CompressionEnabled {
		router.Use(middleware.Gzip())
	}
	router.Use(middleware.BodyParser(cfg.BodyLimitBytes))
	router.Use(middleware.Upload(middleware.UploadConfig{
		MaxBytes:       cfg.UploadMaxBytes,
		MaxMemoryBytes: cfg.UploadMaxMemoryBytes,
		TempDir:        cfg.UploadTempDir,
	}, log))
	if cfg.SanitizeEnabled {
		router.Use(middleware.Sanitize(log))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", handler.Health(serviceName))
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", api.OpenAPI)
	})
	if cfg.SwaggerEnabled {
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/openapi.json"),
		)))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/test", handler.Echo)
		v1.POST("/upload", handler.Upload)

		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	router.NoRoute(handler.NotFound)

	return router
}
