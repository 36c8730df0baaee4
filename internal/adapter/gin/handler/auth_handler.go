package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/internal/adapter/gin/middleware"
	domain "auth-service/internal/domain/user"
	"auth-service/internal/usecase/auth"
	"auth-service/pkg/logger"
)

// AuthHandler handles HTTP requests for registration and sign-in
type AuthHandler struct {
	uc  auth.Service
	log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest represents the HTTP request body for registering a user
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
	Status   string `json:"status"`
}

// LoginRequest represents the HTTP request body for signing in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in HTTP responses. The password hash is never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse wraps the user returned by register and login
type AuthResponse struct {
	User UserResponse `json:"user"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := middleware.BindBody(c, &req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid register request", zap.Error(err))
		middleware.AbortWithError(c, err)
		return
	}

	u, err := h.uc.Register(c.Request.Context(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Picture:  req.Picture,
		Status:   req.Status,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: toUserResponse(u)})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := middleware.BindBody(c, &req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid login request", zap.Error(err))
		middleware.AbortWithError(c, err)
		return
	}

	u, err := h.uc.SignIn(c.Request.Context(), auth.SignInRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: toUserResponse(u)})
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Picture:   u.Picture,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
