package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/estate/listings/internal/infrastructure/auth"
	"github.com/estate/listings/internal/infrastructure/logger"
	"github.com/estate/listings/internal/interfaces/http/dto"
	"github.com/estate/listings/internal/interfaces/http/middleware"
)

// AuthHandler issues and revokes admin tokens
type AuthHandler struct {
	BaseHandler
	authenticator *auth.Authenticator
	tokens        *auth.JWTService
	blacklist     *auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler. blacklist may be nil, in which
// case logout only succeeds without revoking anything.
func NewAuthHandler(authenticator *auth.Authenticator, tokens *auth.JWTService, blacklist *auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		tokens:        tokens,
		blacklist:     blacklist,
	}
}

// Login checks the admin credentials and returns a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	log := logger.GetGinLogger(c)
	token, err := h.authenticator.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled), errors.Is(err, auth.ErrNoSecret):
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, "Admin login is not configured")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Warn("Admin login failed", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "Invalid username or password")
		return
	case err != nil:
		h.HandleError(c, err)
		return
	}

	log.Info("Admin logged in", zap.String("username", req.Username))
	h.Success(c, token)
}

// Logout revokes the presented token until it would have expired
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	if h.blacklist != nil {
		if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, h.tokens.RemainingTTL(claims)); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	logger.GetGinLogger(c).Info("Admin logged out", zap.String("username", claims.Username))
	h.NoContent(c)
}
