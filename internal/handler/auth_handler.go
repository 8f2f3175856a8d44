package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cybertest-backend/internal/middleware"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/response"
	"github.com/stemsi/cybertest-backend/internal/service"
	"github.com/stemsi/cybertest-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Validates username + password behind the per-client attempt limiter, returns a JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}

// GetAdminProfile godoc
// GET /api/v1/auth/admin/me
// Returns the identity carried by the admin token.
func (h *AuthHandler) GetAdminProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admin": gin.H{
			"username":   claims.Subject,
			"expires_at": claims.ExpiresAt,
		},
	})
}
