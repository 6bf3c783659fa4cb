package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crushd/backend/internal/model"
	"github.com/crushd/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// refreshCookieName matches what the mobile client expects.
const refreshCookieName = "refreshToken"

type AuthHandler struct {
	svc           *service.AuthService
	logger        *slog.Logger
	secureCookies bool
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger, secureCookies: secureCookies}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	user, pair, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusCreated, model.Response{
		Success: true,
		Message: "User registered successfully",
		Data: model.AuthData{
			User:        user.Public(),
			AccessToken: pair.AccessToken,
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Login successful",
		Data: model.AuthData{
			User:        user.Public(),
			AccessToken: pair.AccessToken,
		},
	})
}

// Refresh handles POST /auth/refresh. The refresh token only arrives via its
// cookie, and every failure collapses into the same 401 message.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || strings.TrimSpace(refreshToken) == "" {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Refresh token not provided"})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired),
			errors.Is(err, service.ErrTokenMalformed),
			errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: "Invalid refresh token"})
		default:
			h.writeAuthError(c, err)
		}
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Token refreshed successfully",
		Data:    model.RefreshData{AccessToken: pair.AccessToken},
	})
}

// Logout handles POST /auth/logout. It only clears the cookie: issued refresh
// tokens stay valid until expiry since no revocation store exists.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Logout successful",
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := GetAuthClaims(c)
	if claims == nil {
		abortUnauthorized(c, "User not authenticated", "")
		return
	}

	user, err := h.svc.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "User information retrieved successfully",
		Data:    gin.H{"user": user.Public()},
	})
}

// Validate handles GET /auth/validate. Reaching the handler means the gate
// already accepted the token.
func (h *AuthHandler) Validate(c *gin.Context) {
	claims := GetAuthClaims(c)
	if claims == nil {
		abortUnauthorized(c, "User not authenticated", "")
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Token is valid",
		Data: gin.H{"user": gin.H{
			"userId":   claims.UserID,
			"email":    claims.Email,
			"username": claims.Username,
		}},
	})
}

// ForgotPassword handles POST /auth/forgot-password. The response is the same
// whether the account exists or not.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Email is required"})
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "If an account with that email exists, a password reset link has been sent",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Reset token and new password are required"})
		return
	}

	c.JSON(http.StatusNotImplemented, model.ErrorResponse{Message: "Password reset functionality not yet implemented"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	maxAge := int(h.svc.Tokens().RefreshTTL().Seconds())
	c.SetCookie(refreshCookieName, token, maxAge, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.secureCookies, true)
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Message: "Validation failed",
			Errors:  validation.Fields,
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, model.ErrorResponse{Message: conflict.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "User not found"})
	default:
		h.logger.Error("auth request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Internal server error"})
	}
}
