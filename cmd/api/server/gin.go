package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginhandler "auth-service/internal/adapter/gin/handler"
	ginrouter "auth-service/internal/adapter/gin/router"
	"auth-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.AuthHandler,
	cfg *config.Config,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, cfg.HTTP, cfg.Logger.ServiceName, l)

	l.Info("Gin REST API configured",
		zap.String("address", addr),
		zap.Strings("cors_origins", cfg.HTTP.CORSOrigins),
		zap.Bool("swagger", cfg.HTTP.SwaggerEnabled),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
