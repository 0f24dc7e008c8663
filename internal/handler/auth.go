package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/repository"
	"github.com/devconf/workshop-reservation/internal/utils"
)

// AuthHandler exchanges an attendee's access code for a short-lived
// JWT.  Access codes are mailed out by the registration system after
// approval; only their bcrypt hashes are stored.
type AuthHandler struct {
	Cfg       config.Config
	Attendees *repository.AttendeeRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, attendees *repository.AttendeeRepo) *AuthHandler {
	if attendees == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Attendees: attendees}
}

type tokenReq struct {
	IdentityKey string `json:"identity_key"`
	AccessCode  string `json:"access_code"`
}

// IssueToken handles POST /v1/auth/token.  Invalid identity and
// invalid code produce the same 401 so the endpoint cannot be used to
// probe which emails are registered.
func (h *AuthHandler) IssueToken(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	key := booking.NormalizeIdentity(req.IdentityKey)
	if key == "" || req.AccessCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "identity_key/access_code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	att, err := h.Attendees.GetByIdentity(ctx, key)
	if err != nil {
		if err == repository.ErrAttendeeNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyAccessCode(att.AccessCodeHash, req.AccessCode) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, att.IdentityKey, att.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":   access.Token,
		"expires": access.Exp,
		"role":    att.Role,
	})
}
