package di

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"auth-service/cmd/api/infrastructure"
	"auth-service/internal/adapter/db/postgres"
	ginhandler "auth-service/internal/adapter/gin/handler"
	"auth-service/internal/config"
	"auth-service/internal/usecase/auth"
	"auth-service/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	AuthUC      auth.Service
	AuthHandler *ginhandler.AuthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return Build(cfg, l, db), nil
}

// Build wires the repository, usecase and handlers on top of an open database.
func Build(cfg *config.Config, l *zap.Logger, db *gorm.DB) *Container {
	repo := postgres.NewUserRepoPG(db, l)
	hasher := security.NewHasher(cfg.Auth.BcryptCost)

	authUC := auth.New(repo, hasher, auth.Defaults{
		Picture: cfg.Auth.DefaultPicture,
		Status:  cfg.Auth.DefaultStatus,
	}, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		AuthUC:      authUC,
		AuthHandler: ginhandler.NewAuthHandler(authUC, l),
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
