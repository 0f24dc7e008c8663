package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/handler"
	"github.com/devconf/workshop-reservation/internal/middleware"
)

// RegisterPublic registers routes that require no authentication: the
// health check, the cached catalog browse and the token exchange.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, a *handler.AuthHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Guests can inspect the workshop program before logging in; the
	// response cache absorbs the browse traffic during selection rush.
	e.GET("/v1/catalog", p.GetCatalog, middleware.ResponseCache(config.LoadCacheConfig(), rdb))

	e.POST("/v1/auth/token", a.IssueToken)
}
