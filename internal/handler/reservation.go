package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/model"
)

// Reserver is the slice of the booking coordinator the attendee
// endpoints need.
type Reserver interface {
	AvailableSessions(ctx context.Context, identityKey string) (*booking.Availability, error)
	SubmitSelection(ctx context.Context, identityKey string, codes []string) (*model.Selection, error)
}

// ReservationHandler serves the attendee-facing reservation flow.
// JWT authentication and the ATTENDEE role are enforced by middleware
// before these methods run.
type ReservationHandler struct {
	Booking Reserver
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(b Reserver) *ReservationHandler {
	if b == nil {
		panic("nil coordinator passed to NewReservationHandler")
	}
	return &ReservationHandler{Booking: b}
}

// GetAvailableSessions handles GET /v1/sessions.  It returns the
// catalog for the caller's venue, their tier and their current
// selection (null before the first commit).
func (h *ReservationHandler) GetAvailableSessions(c echo.Context) error {
	key, err := identityKey(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	av, err := h.Booking.AvailableSessions(c.Request().Context(), key)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, av)
}

// SubmitSelection handles PUT /v1/selection.  The body carries the
// full candidate code set; the previous selection (if any) is replaced
// atomically.  Responds 200 with the committed selection, 400 for
// policy violations and unknown codes, 409 when a session filled up
// first, and 500 for storage failures (safe to retry, nothing was
// persisted).
func (h *ReservationHandler) SubmitSelection(c echo.Context) error {
	key, err := identityKey(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SessionCodes []string `json:"session_codes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.SessionCodes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_codes is required"})
	}
	sel, err := h.Booking.SubmitSelection(c.Request().Context(), key, body.SessionCodes)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"selection": sel})
}
