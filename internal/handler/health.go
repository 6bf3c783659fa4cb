package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/crushd/backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ping is the liveness endpoint.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root confirms the API is up.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Status:  "ok",
		Message: "Crushd API server is running",
	})
}

// Health checks database reachability with a short deadline.
func Health(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		health := model.HealthResponse{
			Status: "ok",
			Time:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := pool.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			health.Status = "degraded"
		}
		c.JSON(status, health)
	}
}
