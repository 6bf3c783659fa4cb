package handler

import (
	"log/slog"

	"github.com/crushd/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRouter wires every route behind its middleware chain.
func NewRouter(svc *service.AuthService, pool *pgxpool.Pool, logger *slog.Logger, allowedOrigins []string, secureCookies bool) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(logger))
	router.Use(RequestLogger(logger))
	router.Use(CORSMiddleware(allowedOrigins))

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/health", Health(pool))

	tokens := svc.Tokens()
	authHandler := NewAuthHandler(svc, logger, secureCookies)
	userHandler := NewUserHandler(svc, logger)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", AuthMiddleware(tokens), authHandler.Me)
		auth.GET("/validate", AuthMiddleware(tokens), authHandler.Validate)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	users := router.Group("/users")
	{
		users.GET("/:id", OptionalAuthMiddleware(tokens), userHandler.GetUser)
		users.PUT("/:id", AuthMiddleware(tokens), RequireOwnership(), userHandler.UpdateProfile)
	}

	router.GET("/profiles/:username", OptionalAuthMiddleware(tokens), userHandler.GetProfile)

	return router
}
