package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/middleware"
	"github.com/kryptospire-dev/bot-dash/internal/features/auth/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// @Summary Admin login
// @Description Exchange the configured admin credentials for a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} loginResponse "Session token"
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("body", "email and password are required"))
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}

// @Summary Admin logout
// @Description Invalidate the presented session token.
// @Tags auth
// @Produce json
// @Success 204 "Session dropped"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		middleware.RespondError(c, apperrors.NewUnauthorizedError("session token required"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
