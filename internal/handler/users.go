package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crushd/backend/internal/model"
	"github.com/crushd/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// GetUser handles GET /users/:id. Runs behind the optional auth variant: the
// email address is withheld unless the caller is looking at their own
// profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	projection := user.Public()
	claims := GetAuthClaims(c)
	if claims == nil || claims.UserID != user.ID {
		projection.Email = ""
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "User retrieved successfully",
		Data:    gin.H{"user": projection},
	})
}

// GetProfile handles GET /profiles/:username, the username-based variant of
// GetUser with the same email withholding.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	projection := user.Public()
	claims := GetAuthClaims(c)
	if claims == nil || claims.UserID != user.ID {
		projection.Email = ""
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "User retrieved successfully",
		Data:    gin.H{"user": projection},
	})
}

// UpdateProfile handles PUT /users/:id, gated by AuthMiddleware and
// RequireOwnership.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid request body"})
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    gin.H{"user": user.Public()},
	})
}

func (h *UserHandler) writeError(c *gin.Context, err error) {
	var validation *service.ValidationError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Message: "Validation failed",
			Errors:  validation.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Message: "User not found"})
	default:
		h.logger.Error("user request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Message: "Internal server error"})
	}
}
