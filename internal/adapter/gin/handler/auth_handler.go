package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crm-service/internal/adapter/gin/response"
	"crm-service/internal/usecase/auth"
	"crm-service/pkg/logger"
)

// Authenticator issues tokens for valid credentials.
type Authenticator interface {
	Login(ctx context.Context, name, password string) (*auth.Token, error)
}

// AuthHandler handles sign-in.
type AuthHandler struct {
	auth Authenticator
	log  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(a Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: a, log: log}
}

// LoginRequest represents the HTTP request body for signing in
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	tok, err := h.auth.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		log.Info("Gin Login failed", zap.String("name", req.Name), zap.Error(err))
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}
