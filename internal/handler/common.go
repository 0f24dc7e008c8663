package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/policy"
)

// identityKey extracts the caller's identity key stored in context by
// the JWT middleware.
func identityKey(c echo.Context) (string, error) {
	if s, ok := c.Get("identity_key").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("missing identity_key in context")
}

// writeBookingError maps coordinator errors onto the HTTP taxonomy.
// Policy violations and invalid selections are client errors (400),
// a full session is a conflict (409, race outcome rather than rule
// failure), identity problems are 401/403, and anything else is a
// retryable storage failure (500) that left no partial state behind.
func writeBookingError(c echo.Context, err error) error {
	var violation *policy.Violation
	if errors.As(err, &violation) {
		body := echo.Map{"error": violation.Message, "rule": violation.Rule}
		if violation.SessionCode != "" {
			body["session_code"] = violation.SessionCode
		}
		return c.JSON(http.StatusBadRequest, body)
	}
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        conflict.Error(),
			"session_code": conflict.SessionCode,
		})
	}
	switch {
	case errors.Is(err, booking.ErrUnknownIdentity):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown identity"})
	case errors.Is(err, booking.ErrNotApproved):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "registration not approved"})
	case errors.Is(err, booking.ErrNoVenue):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.ErrNoVenue.Error()})
	case errors.Is(err, booking.ErrInvalidSelection):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": booking.ErrInvalidSelection.Error()})
	case errors.Is(err, booking.ErrSelectionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "selection not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "temporary storage failure", "retryable": true})
}
