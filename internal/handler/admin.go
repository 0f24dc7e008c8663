package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/model"
	"github.com/devconf/workshop-reservation/internal/repository"
	"github.com/devconf/workshop-reservation/internal/utils"
)

// SelectionRemover is the slice of the booking coordinator the admin
// endpoints need: atomic release-and-delete of one selection.
type SelectionRemover interface {
	DeleteSelection(ctx context.Context, identityKey string) (int, error)
}

// AttendeeAccessUpdater is the attendee repository slice the access
// code reset needs.
type AttendeeAccessUpdater interface {
	UpdateAccessCodeHash(ctx context.Context, identityKey, hash string) error
}

// AdminHandler serves catalog seeding and selection administration.
// Routes are guarded by the ADMIN role.
type AdminHandler struct {
	Cfg        config.Config
	Sessions   *repository.SessionRepo
	Selections *repository.SelectionRepo
	Attendees  AttendeeAccessUpdater
	Booking    SelectionRemover
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cfg config.Config, sessions *repository.SessionRepo, selections *repository.SelectionRepo, attendees AttendeeAccessUpdater, b SelectionRemover) *AdminHandler {
	if sessions == nil || selections == nil || attendees == nil || b == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Sessions: sessions, Selections: selections, Attendees: attendees, Booking: b}
}

// SeedCatalog handles POST /v1/admin/catalog.  The body is the full
// session definition list; the upsert is keyed by code and never
// touches reserved counters, so re-running a seed against a live
// catalog is safe.
func (h *AdminHandler) SeedCatalog(c echo.Context) error {
	var body struct {
		Sessions []model.SessionDef `json:"sessions"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Sessions) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sessions is required"})
	}
	for _, d := range body.Sessions {
		if d.Code == "" || d.Capacity == 0 || (d.Day != 1 && d.Day != 2) || d.Slot == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session definition", "code": d.Code})
		}
		if d.Venue != model.VenueForum && d.Venue != model.VenueStudio {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown venue", "code": d.Code})
		}
	}
	count, err := h.Sessions.UpsertDefs(c.Request().Context(), body.Sessions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to seed catalog"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// DeleteSelection handles DELETE /v1/admin/selections/:identity.  It
// releases every seat the selection held and removes the record in one
// transaction, responding with the number of released seats.
func (h *AdminHandler) DeleteSelection(c echo.Context) error {
	key := c.Param("identity")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid identity"})
	}
	released, err := h.Booking.DeleteSelection(c.Request().Context(), key)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released_seats": released})
}

// ResetAccessCode handles PUT /v1/admin/attendees/:identity/access-code.
// The plain code is hashed with the configured bcrypt cost before it
// is stored; the attendee's previous code stops working immediately.
func (h *AdminHandler) ResetAccessCode(c echo.Context) error {
	key := booking.NormalizeIdentity(c.Param("identity"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid identity"})
	}
	var body struct {
		AccessCode string `json:"access_code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AccessCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access_code is required"})
	}
	hash, err := utils.HashAccessCode(body.AccessCode, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hash access code"})
	}
	if err := h.Attendees.UpdateAccessCodeHash(c.Request().Context(), key, hash); err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update access code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"identity_key": key})
}

// ListSelections handles GET /v1/admin/selections: every selection
// joined with attendee profile and session metadata, read-only.
func (h *AdminHandler) ListSelections(c echo.Context) error {
	items, err := h.Selections.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load selections"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
