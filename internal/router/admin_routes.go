package router

// Admin routes for catalog seeding and selection administration.
// They are kept in their own file to keep concerns isolated from the
// attendee-facing flow.

import (
	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/handler"
	"github.com/devconf/workshop-reservation/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// Idempotent bulk upsert of session definitions
	g.POST("/catalog", h.SeedCatalog)
	// Read-only join of selections with attendee and session metadata
	g.GET("/selections", h.ListSelections)
	// Release seats and remove one attendee's selection atomically
	g.DELETE("/selections/:identity", h.DeleteSelection)
	// Rotate an attendee's access code (hashed before storage)
	g.PUT("/attendees/:identity/access-code", h.ResetAccessCode)
}
