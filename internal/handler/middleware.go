package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crushd/backend/internal/model"
	"github.com/crushd/backend/internal/service"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

const authClaimsKey = "auth_claims"

const bearerPrefix = "Bearer "

// AuthMiddleware gates protected routes behind a bearer access token. The
// failure reason is only exposed through the two coarse codes TOKEN_EXPIRED
// and INVALID_TOKEN; clients use the former to trigger a refresh round-trip.
func AuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Access denied. No token provided.", "")
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthorized(c, "Access denied. Invalid token format. Use Bearer <token>", "")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if tokenStr == "" {
			abortUnauthorized(c, "Access denied. No token provided.", "")
			return
		}

		claims, err := tokens.VerifyAccess(tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abortUnauthorized(c, "Access denied. Token has expired.", "TOKEN_EXPIRED")
				return
			}
			abortUnauthorized(c, "Access denied. Invalid token.", "INVALID_TOKEN")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches claims when a valid bearer token is present
// and otherwise lets the request through anonymous. It never aborts.
func OptionalAuthMiddleware(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, bearerPrefix) {
			tokenStr := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if tokenStr != "" {
				if claims, err := tokens.VerifyAccess(tokenStr); err == nil {
					c.Set(authClaimsKey, claims)
				}
			}
		}
		c.Next()
	}
}

// RequireOwnership rejects requests whose authenticated identity does not
// match the :id path parameter. Must run after AuthMiddleware.
func RequireOwnership() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetAuthClaims(c)
		if claims == nil {
			abortUnauthorized(c, "Access denied. Authentication required.", "")
			return
		}
		if claims.UserID != c.Param("id") {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Message: "Access denied. You can only access your own resources.",
			})
			return
		}
		c.Next()
	}
}

// GetAuthClaims returns the verified claims attached by the auth middleware,
// or nil for anonymous requests.
func GetAuthClaims(c *gin.Context) *service.Claims {
	if value, ok := c.Get(authClaimsKey); ok {
		if claims, ok := value.(*service.Claims); ok {
			return claims
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Message: message,
		Code:    code,
	})
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// Recovery turns panics into opaque 500s, logging and reporting them instead
// of swallowing.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					slog.Any("error", rec),
					slog.String("path", c.Request.URL.Path),
				)
				sentry.CurrentHub().Recover(rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
					Message: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
