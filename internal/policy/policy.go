// Package policy holds the pure selection rules for workshop booking.
// Validation is side-effect free: it looks only at the tier and the
// candidate sessions it is handed and never touches storage.  The rule
// order is fixed and the first violated rule wins, which keeps error
// messages deterministic for the client.
package policy

import (
	"fmt"

	"github.com/devconf/workshop-reservation/internal/model"
)

// Rule tags carried on violations so callers can branch without
// parsing message text.
const (
	RuleDuplicateSlot   = "duplicate_slot"
	RuleLinkedGroup     = "linked_group"
	RuleSessionFull     = "session_full"
	RuleQuota           = "quota"
	RuleUnsupportedTier = "unsupported_tier"
)

// Violation describes why a candidate selection breaks the booking
// rules.  It implements error so it can travel through the coordinator
// unchanged.  SessionCode is set only for capacity violations.
type Violation struct {
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	SessionCode string `json:"session_code,omitempty"`
}

func (v *Violation) Error() string { return v.Message }

// quotaKind tags the two policy classes.  Adding a third tier class
// means adding a variant here and a row in venuePolicies, nothing else.
type quotaKind int

const (
	exactOnePerDay quotaKind = iota
	flexible
)

// venuePolicy is the per-venue quota rule set.  The flexible bounds
// are ignored for the exactOnePerDay kind.
type venuePolicy struct {
	kind      quotaKind
	maxTotal  int
	minPerDay int
	maxPerDay int
}

var venuePolicies = map[model.Venue]venuePolicy{
	model.VenueForum:  {kind: exactOnePerDay},
	model.VenueStudio: {kind: flexible, maxTotal: 3, minPerDay: 1, maxPerDay: 2},
}

var tierVenues = map[string]model.Venue{
	"STANDARD": model.VenueForum,
	"PREMIUM":  model.VenueStudio,
}

// VenueForTier maps a ticket tier to its workshop venue.  The second
// return value is false when the tier grants no workshop access.
func VenueForTier(tier string) (model.Venue, bool) {
	v, ok := tierVenues[tier]
	return v, ok
}

// Validate checks a candidate session set against the booking rules
// for the given tier.  It returns nil when the selection is acceptable
// and the first violation otherwise.  Rule order: slot uniqueness,
// linked-group exclusivity, capacity headroom, tier quota.
func Validate(tier string, candidates []model.Session) *Violation {
	if v := checkSlots(candidates); v != nil {
		return v
	}
	if v := checkLinkedGroups(candidates); v != nil {
		return v
	}
	if v := checkCapacity(candidates); v != nil {
		return v
	}
	return checkQuota(tier, candidates)
}

// checkSlots rejects two candidates occupying the same (day, slot).
func checkSlots(candidates []model.Session) *Violation {
	type daySlot struct {
		day  uint8
		slot string
	}
	seen := make(map[daySlot]bool, len(candidates))
	for _, s := range candidates {
		key := daySlot{day: s.Day, slot: s.Slot}
		if seen[key] {
			return &Violation{Rule: RuleDuplicateSlot, Message: "duplicate time-slot selection"}
		}
		seen[key] = true
	}
	return nil
}

// checkLinkedGroups rejects two candidates sharing a non-null linked
// group.  Linked sessions are substitutes for one another; an attendee
// may hold at most one of them.
func checkLinkedGroups(candidates []model.Session) *Violation {
	seen := make(map[string]bool, len(candidates))
	for _, s := range candidates {
		if s.LinkedGroup == nil || *s.LinkedGroup == "" {
			continue
		}
		if seen[*s.LinkedGroup] {
			return &Violation{Rule: RuleLinkedGroup, Message: "mutually exclusive sessions selected"}
		}
		seen[*s.LinkedGroup] = true
	}
	return nil
}

// checkCapacity requires seat headroom on every candidate as of the
// state the caller loaded.  The coordinator re-verifies headroom with
// a compare-and-set at write time; this check exists to reject
// obviously full sessions before any mutation starts.  Reports the
// first full session encountered.
func checkCapacity(candidates []model.Session) *Violation {
	for _, s := range candidates {
		if s.Full() {
			return &Violation{
				Rule:        RuleSessionFull,
				Message:     fmt.Sprintf("session %s is full", s.Code),
				SessionCode: s.Code,
			}
		}
	}
	return nil
}

// checkQuota applies the per-venue quota class for the tier.
func checkQuota(tier string, candidates []model.Session) *Violation {
	venue, ok := VenueForTier(tier)
	if !ok {
		return &Violation{Rule: RuleUnsupportedTier, Message: "workshops not available for this ticket"}
	}
	p, ok := venuePolicies[venue]
	if !ok {
		return &Violation{Rule: RuleUnsupportedTier, Message: "workshops not available for this ticket"}
	}

	perDay := map[uint8]int{}
	for _, s := range candidates {
		perDay[s.Day]++
	}

	switch p.kind {
	case exactOnePerDay:
		for _, day := range []uint8{1, 2} {
			if perDay[day] != 1 {
				return &Violation{
					Rule:    RuleQuota,
					Message: fmt.Sprintf("exactly one session must be selected on day %d", day),
				}
			}
		}
	case flexible:
		if len(candidates) > p.maxTotal {
			return &Violation{
				Rule:    RuleQuota,
				Message: fmt.Sprintf("at most %d sessions may be selected", p.maxTotal),
			}
		}
		for _, day := range []uint8{1, 2} {
			if perDay[day] < p.minPerDay {
				return &Violation{
					Rule:    RuleQuota,
					Message: fmt.Sprintf("at least %d session must be selected on day %d", p.minPerDay, day),
				}
			}
			if perDay[day] > p.maxPerDay {
				return &Violation{
					Rule:    RuleQuota,
					Message: fmt.Sprintf("at most %d sessions may be selected on day %d", p.maxPerDay, day),
				}
			}
		}
	}
	return nil
}
