package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/fleetscale/autoscaler-core/internal/auth"
	"github.com/fleetscale/autoscaler-core/pkg/config"
	"github.com/fleetscale/autoscaler-core/pkg/database/queries"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userRepo    *queries.UserRepository
	authService *auth.Service
	config      config.APIConfig
}

func NewAuthHandler(userRepo *queries.UserRepository, authService *auth.Service, cfg config.APIConfig) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, authService: authService, config: cfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"operator"`
	Password string `json:"password" binding:"required" example:"secretpassword123"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
}

// Login godoc
// @Summary Operator login
// @Description Authenticate an operator and return a JWT, also set as a cookie (HTTP-only unless api.cookie_http_only is false)
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == queries.ErrUserNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	cookieName := h.config.CookieName
	if cookieName == "" {
		cookieName = "auth_token"
	}
	cookieMaxAge := h.config.CookieMaxAge
	if cookieMaxAge == 0 {
		cookieMaxAge = 86400
	}
	cookiePath := h.config.CookiePath
	if cookiePath == "" {
		cookiePath = "/"
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(cookieName, token, cookieMaxAge, cookiePath, "", h.config.CookieSecure, h.config.CookieHTTPOnly)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: cookieMaxAge,
		Username:  user.Username,
	})
}
