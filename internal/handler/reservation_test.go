package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devconf/workshop-reservation/internal/booking"
	"github.com/devconf/workshop-reservation/internal/config"
	"github.com/devconf/workshop-reservation/internal/model"
	"github.com/devconf/workshop-reservation/internal/policy"
	"github.com/devconf/workshop-reservation/internal/repository"
	"github.com/devconf/workshop-reservation/internal/utils"
)

// stubReserver returns canned results so the tests exercise only the
// HTTP mapping, not the coordinator.
type stubReserver struct {
	av  *booking.Availability
	sel *model.Selection
	err error
}

func (s *stubReserver) AvailableSessions(ctx context.Context, identityKey string) (*booking.Availability, error) {
	return s.av, s.err
}

func (s *stubReserver) SubmitSelection(ctx context.Context, identityKey string, codes []string) (*model.Selection, error) {
	return s.sel, s.err
}

func newSelectionRequest(t *testing.T, h *ReservationHandler, body string, identityKey string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/selection", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identityKey != "" {
		c.Set("identity_key", identityKey)
	}
	return rec, h.SubmitSelection(c)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetAvailableSessions(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := NewReservationHandler(&stubReserver{av: &booking.Availability{
			Tier:  "STANDARD",
			Venue: model.VenueForum,
			Sessions: []model.Session{
				{Code: "F1A", Venue: model.VenueForum, Day: 1, Slot: "A", Capacity: 10},
			},
		}})
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("identity_key", "u1@conf.example")

		require.NoError(t, h.GetAvailableSessions(c))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, "STANDARD", body["tier"])
		require.Equal(t, "FORUM", body["venue"])
		require.Nil(t, body["current_selection"])
	})

	t.Run("missing identity", func(t *testing.T) {
		h := NewReservationHandler(&stubReserver{})
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.GetAvailableSessions(c))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSubmitSelectionOK(t *testing.T) {
	sel := &model.Selection{
		IdentityKey:  "u1@conf.example",
		Tier:         "STANDARD",
		Venue:        model.VenueForum,
		SessionCodes: []string{"F1A", "F2A"},
		Day1Count:    1,
		Day2Count:    1,
	}
	h := NewReservationHandler(&stubReserver{sel: sel})

	rec, err := newSelectionRequest(t, h, `{"session_codes":["F1A","F2A"]}`, "u1@conf.example")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	committed, ok := body["selection"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "u1@conf.example", committed["identity_key"])
}

func TestSubmitSelectionBadRequests(t *testing.T) {
	h := NewReservationHandler(&stubReserver{})

	t.Run("missing identity", func(t *testing.T) {
		rec, err := newSelectionRequest(t, h, `{"session_codes":["F1A"]}`, "")
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, err := newSelectionRequest(t, h, `{"session_codes":`, "u1@conf.example")
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty code list", func(t *testing.T) {
		rec, err := newSelectionRequest(t, h, `{"session_codes":[]}`, "u1@conf.example")
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitSelectionErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "policy violation",
			err:        &policy.Violation{Rule: policy.RuleQuota, Message: "exactly one session must be selected on day 2"},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				require.Equal(t, policy.RuleQuota, body["rule"])
				require.Equal(t, "exactly one session must be selected on day 2", body["error"])
			},
		},
		{
			name:       "conflict",
			err:        &booking.ConflictError{SessionCode: "F1A"},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]any) {
				require.Equal(t, "F1A", body["session_code"])
			},
		},
		{
			name:       "unknown identity",
			err:        booking.ErrUnknownIdentity,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not approved",
			err:        booking.ErrNotApproved,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no venue for tier",
			err:        booking.ErrNoVenue,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				require.Equal(t, "workshops not available for this ticket", body["error"])
			},
		},
		{
			name:       "unknown session code",
			err:        booking.ErrInvalidSelection,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "storage failure",
			err:        errors.New("driver: bad connection"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				require.Equal(t, true, body["retryable"])
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewReservationHandler(&stubReserver{err: tc.err})
			rec, err := newSelectionRequest(t, h, `{"session_codes":["F1A","F2A"]}`, "u1@conf.example")
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.check != nil {
				tc.check(t, decodeBody(t, rec))
			}
		})
	}
}

type stubRemover struct {
	released int
	err      error
}

func (s *stubRemover) DeleteSelection(ctx context.Context, identityKey string) (int, error) {
	return s.released, s.err
}

func TestAdminDeleteSelection(t *testing.T) {
	newCtx := func(remover SelectionRemover, identity string) (*httptest.ResponseRecorder, error) {
		h := &AdminHandler{Booking: remover}
		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/v1/admin/selections/"+identity, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(identity)
		return rec, h.DeleteSelection(c)
	}

	t.Run("ok", func(t *testing.T) {
		rec, err := newCtx(&stubRemover{released: 2}, "u1@conf.example")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, float64(2), decodeBody(t, rec)["released_seats"])
	})

	t.Run("not found", func(t *testing.T) {
		rec, err := newCtx(&stubRemover{err: booking.ErrSelectionNotFound}, "ghost@conf.example")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

type stubAccessUpdater struct {
	key  string
	hash string
	err  error
}

func (s *stubAccessUpdater) UpdateAccessCodeHash(ctx context.Context, identityKey, hash string) error {
	s.key = identityKey
	s.hash = hash
	return s.err
}

func TestAdminResetAccessCode(t *testing.T) {
	newCtx := func(updater *stubAccessUpdater, identity, body string) (*httptest.ResponseRecorder, error) {
		h := &AdminHandler{
			Cfg:       config.Config{BcryptCost: bcrypt.MinCost},
			Attendees: updater,
		}
		e := echo.New()
		req := httptest.NewRequest(http.MethodPut, "/v1/admin/attendees/"+identity+"/access-code", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(identity)
		return rec, h.ResetAccessCode(c)
	}

	t.Run("hashes with configured cost", func(t *testing.T) {
		updater := &stubAccessUpdater{}
		rec, err := newCtx(updater, "U1@Conf.Example", `{"access_code":"wk-7pq-f2m"}`)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u1@conf.example", updater.key)
		require.True(t, utils.VerifyAccessCode(updater.hash, "wk-7pq-f2m"))
		cost, err := bcrypt.Cost([]byte(updater.hash))
		require.NoError(t, err)
		require.Equal(t, bcrypt.MinCost, cost)
	})

	t.Run("missing code", func(t *testing.T) {
		rec, err := newCtx(&stubAccessUpdater{}, "u1@conf.example", `{}`)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown attendee", func(t *testing.T) {
		rec, err := newCtx(&stubAccessUpdater{err: repository.ErrAttendeeNotFound}, "ghost@conf.example", `{"access_code":"wk-7pq-f2m"}`)
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
