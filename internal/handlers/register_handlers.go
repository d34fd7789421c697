package handlers

import (
	"fmt"

	"github.com/SscSPs/terminal_banking/internal/core/services"
	"github.com/SscSPs/terminal_banking/internal/middleware"
	"github.com/SscSPs/terminal_banking/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// authRateLimit throttles credential endpoints per client IP.
const authRateLimit = "10-M"

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	svc *services.Container,
) error {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	authLimiter, err := middleware.NewRateLimiter(authRateLimit)
	if err != nil {
		return fmt.Errorf("failed to build auth rate limiter: %w", err)
	}
	registerAuthRoutes(r, NewAuthHandler(svc.Users, cfg), middleware.GinMiddlewarize(authLimiter))

	setupAPIV1Routes(r, cfg, svc)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group behind the JWT middleware.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	svc *services.Container,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerAccountRoutes(v1, svc.Users, cfg.SavingsInterestRate)
}
