// Package booking contains the reservation coordinator: the only
// component allowed to mutate session seat counters and selection
// records, and it always mutates both inside a single transaction.
package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/devconf/workshop-reservation/internal/model"
	"github.com/devconf/workshop-reservation/internal/policy"
	"github.com/devconf/workshop-reservation/internal/queue"
)

// Gateway resolves the attendee behind an identity key.  Resolve must
// return ErrUnknownIdentity when no record exists; approval and tier
// checks stay with the coordinator.  The production implementation is
// identity.StoreGateway.
type Gateway interface {
	Resolve(ctx context.Context, identityKey string) (*model.Attendee, error)
}

// Notifier receives the post-commit confirmation event.  Failures are
// logged and swallowed; they never become user-visible errors.
type Notifier interface {
	SelectionConfirmed(ctx context.Context, ev queue.SelectionConfirmedEvent) error
}

// Coordinator orchestrates validate → release-old → reserve-new →
// persist-selection as one atomic unit per submission.  Submissions
// for unrelated attendees run concurrently; the store's row locks and
// compare-and-set increments guarantee no overbooking.
type Coordinator struct {
	store    Store
	gateway  Gateway
	notifier Notifier
	timeout  time.Duration
}

// New constructs a Coordinator.  The notifier may be nil when no sink
// is configured (e.g. in tests), in which case confirmation events are
// skipped.
func New(store Store, gateway Gateway, notifier Notifier) *Coordinator {
	if store == nil || gateway == nil {
		panic("nil dependency passed to booking.New")
	}
	return &Coordinator{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		timeout:  10 * time.Second,
	}
}

// Availability is the attendee-facing view of the catalog: the
// sessions bookable for their tier plus whatever they currently hold.
type Availability struct {
	Tier     string           `json:"tier"`
	Venue    model.Venue      `json:"venue"`
	Sessions []model.Session  `json:"sessions"`
	Current  *model.Selection `json:"current_selection"`
}

// AvailableSessions resolves the attendee, maps their tier to a venue
// and returns the venue catalog together with their current selection
// (nil when they have not picked yet).
func (co *Coordinator) AvailableSessions(ctx context.Context, identityKey string) (*Availability, error) {
	key := NormalizeIdentity(identityKey)
	att, err := co.gateway.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !att.Approved {
		return nil, ErrNotApproved
	}
	venue, ok := policy.VenueForTier(att.Tier)
	if !ok {
		return nil, ErrNoVenue
	}
	sessions, err := co.store.SessionsByVenue(ctx, venue)
	if err != nil {
		return nil, err
	}
	current, err := co.store.SelectionByIdentity(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Availability{Tier: att.Tier, Venue: venue, Sessions: sessions, Current: current}, nil
}

// SubmitSelection replaces the attendee's selection with the candidate
// codes.  All seat counter changes and the selection upsert happen in
// one transaction: on any failure the pre-call state is fully
// restored.  Re-submitting the current codes is a no-op for the seat
// counters (each release is matched by a reserve).
func (co *Coordinator) SubmitSelection(ctx context.Context, identityKey string, codes []string) (*model.Selection, error) {
	key := NormalizeIdentity(identityKey)
	att, err := co.gateway.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !att.Approved {
		return nil, ErrNotApproved
	}
	venue, ok := policy.VenueForTier(att.Tier)
	if !ok {
		return nil, ErrNoVenue
	}

	candidates := normalizeCodes(codes)
	if len(candidates) == 0 {
		return nil, ErrInvalidSelection
	}

	ctx, cancel := context.WithTimeout(ctx, co.timeout)
	defer cancel()

	var result *model.Selection
	err = co.store.InTx(ctx, func(tx Tx) error {
		// Lock the selection row first so concurrent re-selections
		// from the same identity serialize; session rows are locked
		// next, in catalog order, on every code path.
		existing, err := tx.SelectionForUpdate(ctx, key)
		if err != nil {
			return err
		}

		sessions, err := tx.SessionsByCodes(ctx, venue, candidates)
		if err != nil {
			return err
		}
		if len(sessions) != len(candidates) {
			return ErrInvalidSelection
		}

		// The capacity rule must not count the attendee's own seats:
		// those are released before the new ones are reserved, so a
		// re-pick of a currently full session the attendee already
		// holds is still valid.  The definitive headroom check is the
		// compare-and-set in ReserveSeat below.
		if v := policy.Validate(att.Tier, discountOwnSeats(sessions, existing)); v != nil {
			// A full session is a race outcome, not a rule failure:
			// surface it with conflict semantics like a failed
			// reserve, not as a policy violation.
			if v.Rule == policy.RuleSessionFull {
				return &ConflictError{SessionCode: v.SessionCode}
			}
			return v
		}

		if existing != nil {
			for _, code := range existing.SessionCodes {
				if err := tx.ReleaseSeat(ctx, code); err != nil {
					return err
				}
			}
		}
		for _, s := range sessions {
			if err := tx.ReserveSeat(ctx, s.Code); err != nil {
				if errors.Is(err, ErrSessionFull) {
					return &ConflictError{SessionCode: s.Code}
				}
				return err
			}
		}

		sel := buildSelection(key, att.Tier, venue, sessions)
		if existing != nil {
			sel.ID = existing.ID
			sel.CreatedAt = existing.CreatedAt
		}
		if err := tx.UpsertSelection(ctx, sel); err != nil {
			return err
		}
		result = sel
		return nil
	})
	if err != nil {
		return nil, err
	}

	co.notifyConfirmed(result)
	return result, nil
}

// DeleteSelection removes the attendee's selection and releases every
// seat it held, atomically.  It returns the number of released seats.
func (co *Coordinator) DeleteSelection(ctx context.Context, identityKey string) (int, error) {
	key := NormalizeIdentity(identityKey)

	ctx, cancel := context.WithTimeout(ctx, co.timeout)
	defer cancel()

	released := 0
	err := co.store.InTx(ctx, func(tx Tx) error {
		existing, err := tx.SelectionForUpdate(ctx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrSelectionNotFound
		}
		for _, code := range existing.SessionCodes {
			if err := tx.ReleaseSeat(ctx, code); err != nil {
				return err
			}
			released++
		}
		return tx.DeleteSelection(ctx, key)
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// notifyConfirmed dispatches the confirmation event in the background.
// The commit already happened; a sink failure is logged, never
// propagated.
func (co *Coordinator) notifyConfirmed(sel *model.Selection) {
	if co.notifier == nil || sel == nil {
		return
	}
	ev := queue.SelectionConfirmedEvent{
		IdentityKey:  sel.IdentityKey,
		Tier:         sel.Tier,
		Venue:        string(sel.Venue),
		SessionCodes: sel.SessionCodes,
		Day1Count:    sel.Day1Count,
		Day2Count:    sel.Day2Count,
		ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := co.notifier.SelectionConfirmed(ctx, ev); err != nil {
			log.Printf("booking: confirmation notify failed for %s: %v", sel.IdentityKey, err)
		}
	}()
}

// NormalizeIdentity lower-cases and trims an identity key.  Every
// entry point applies it before touching storage so "U1@Conf.Example"
// and "u1@conf.example" address the same selection row.
func NormalizeIdentity(identityKey string) string {
	return strings.ToLower(strings.TrimSpace(identityKey))
}

// normalizeCodes trims, upper-cases and de-duplicates the submitted
// codes while preserving submission order.
func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// discountOwnSeats returns the candidate sessions with the attendee's
// currently held seats subtracted from the reserved counters, so the
// capacity rule sees the headroom that will exist after the release
// half runs.
func discountOwnSeats(sessions []model.Session, existing *model.Selection) []model.Session {
	if existing == nil {
		return sessions
	}
	adjusted := make([]model.Session, len(sessions))
	copy(adjusted, sessions)
	for i := range adjusted {
		if existing.Holds(adjusted[i].Code) && adjusted[i].Reserved > 0 {
			adjusted[i].Reserved--
		}
	}
	return adjusted
}

// buildSelection assembles the new selection record with derived
// per-day counters.  Session order follows the locked catalog order
// (day, then slot) for deterministic output.
func buildSelection(key, tier string, venue model.Venue, sessions []model.Session) *model.Selection {
	sel := &model.Selection{
		IdentityKey:  key,
		Tier:         tier,
		Venue:        venue,
		SessionCodes: make([]string, 0, len(sessions)),
	}
	for _, s := range sessions {
		sel.SessionCodes = append(sel.SessionCodes, s.Code)
		switch s.Day {
		case 1:
			sel.Day1Count++
		case 2:
			sel.Day2Count++
		}
	}
	return sel
}
