package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/handler"
	"github.com/devconf/workshop-reservation/internal/middleware"
)

// RegisterAttendee registers attendee-scoped endpoints under /v1.
// All routes require a valid JWT with the ATTENDEE role and sit behind
// the Redis token bucket so a misbehaving client cannot monopolize
// the selection window.
func RegisterAttendee(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ATTENDEE"),
		middleware.RateLimit(config.LoadRateLimitConfig(), rdb),
	)
	g.GET("/sessions", h.GetAvailableSessions)
	g.PUT("/selection", h.SubmitSelection)
}
