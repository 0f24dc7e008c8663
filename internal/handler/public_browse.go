package handler

// Public catalog browsing.  Guests can inspect the workshop program
// (including remaining seats) before authenticating; responses here
// sit behind the Redis response cache.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/model"
	"github.com/devconf/workshop-reservation/internal/repository"
)

// PublicHandler serves unauthenticated catalog endpoints.
type PublicHandler struct {
	Sessions *repository.SessionRepo
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(sessions *repository.SessionRepo) *PublicHandler {
	if sessions == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Sessions: sessions}
}

// publicSession is the sanitized catalog view: live counters are
// reduced to a seats_left number.
type publicSession struct {
	Code      string      `json:"code"`
	Venue     model.Venue `json:"venue"`
	Day       uint8       `json:"day"`
	Slot      string      `json:"slot"`
	Title     string      `json:"title"`
	Capacity  uint32      `json:"capacity"`
	SeatsLeft uint32      `json:"seats_left"`
}

// GetCatalog handles GET /v1/catalog.  The optional ?venue= query
// restricts the listing to one venue.
func (h *PublicHandler) GetCatalog(c echo.Context) error {
	ctx := c.Request().Context()

	var sessions []model.Session
	var err error
	if v := strings.ToUpper(strings.TrimSpace(c.QueryParam("venue"))); v != "" {
		sessions, err = h.Sessions.ListByVenue(ctx, model.Venue(v))
	} else {
		sessions, err = h.Sessions.ListAll(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load catalog"})
	}

	items := make([]publicSession, 0, len(sessions))
	for _, s := range sessions {
		left := uint32(0)
		if s.Capacity > s.Reserved {
			left = s.Capacity - s.Reserved
		}
		items = append(items, publicSession{
			Code:      s.Code,
			Venue:     s.Venue,
			Day:       s.Day,
			Slot:      s.Slot,
			Title:     s.Title,
			Capacity:  s.Capacity,
			SeatsLeft: left,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
