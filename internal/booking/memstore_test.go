package booking

import (
	"context"
	"sort"
	"sync"

	"github.com/devconf/workshop-reservation/internal/model"
)

// memStore is an in-memory Store with the same transactional contract
// as the MySQL-backed one: mutations buffer inside the Tx and apply
// only when the function returns nil, and ReserveSeat uses the same
// compare-and-set rule.  A single mutex stands in for the row locks,
// which serializes transactions exactly like the production locking
// order does for overlapping identities and sessions.
type memStore struct {
	mu         sync.Mutex
	sessions   map[string]model.Session
	selections map[string]model.Selection

	// failReserve, when set, makes the next ReserveSeat of that code
	// fail with a synthetic storage error.  It simulates a crash after
	// the release half of a re-selection has already run in the Tx.
	failReserve map[string]error
}

func newMemStore(sessions ...model.Session) *memStore {
	s := &memStore{
		sessions:    make(map[string]model.Session, len(sessions)),
		selections:  make(map[string]model.Selection),
		failReserve: make(map[string]error),
	}
	for _, sess := range sessions {
		s.sessions[sess.Code] = sess
	}
	return s
}

func (s *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:       s,
		sessions:    make(map[string]model.Session),
		selections:  make(map[string]*model.Selection),
		touchedSels: make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for code, sess := range tx.sessions {
		s.sessions[code] = sess
	}
	for key := range tx.touchedSels {
		if sel := tx.selections[key]; sel != nil {
			s.selections[key] = *sel
		} else {
			delete(s.selections, key)
		}
	}
	return nil
}

func (s *memStore) SessionsByVenue(ctx context.Context, venue model.Venue) ([]model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.Venue == venue {
			out = append(out, sess)
		}
	}
	sortSessions(out)
	return out, nil
}

func (s *memStore) SelectionByIdentity(ctx context.Context, identityKey string) (*model.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[identityKey]
	if !ok {
		return nil, nil
	}
	cp := sel
	return &cp, nil
}

// reserved reads a seat counter outside any transaction.
func (s *memStore) reserved(code string) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[code].Reserved
}

// snapshot captures all counters for before/after comparisons.
func (s *memStore) snapshot() map[string]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint32, len(s.sessions))
	for code, sess := range s.sessions {
		out[code] = sess.Reserved
	}
	return out
}

// memTx buffers mutations until commit.  Reads observe the Tx's own
// writes first, then the committed state.
type memTx struct {
	store       *memStore
	sessions    map[string]model.Session
	selections  map[string]*model.Selection
	touchedSels map[string]bool
}

func (tx *memTx) session(code string) (model.Session, bool) {
	if sess, ok := tx.sessions[code]; ok {
		return sess, true
	}
	sess, ok := tx.store.sessions[code]
	return sess, ok
}

func (tx *memTx) SessionsByCodes(ctx context.Context, venue model.Venue, codes []string) ([]model.Session, error) {
	var out []model.Session
	for _, code := range codes {
		sess, ok := tx.session(code)
		if !ok || sess.Venue != venue {
			continue
		}
		out = append(out, sess)
	}
	sortSessions(out)
	return out, nil
}

func (tx *memTx) SelectionForUpdate(ctx context.Context, identityKey string) (*model.Selection, error) {
	if tx.touchedSels[identityKey] {
		return tx.selections[identityKey], nil
	}
	sel, ok := tx.store.selections[identityKey]
	if !ok {
		return nil, nil
	}
	cp := sel
	return &cp, nil
}

func (tx *memTx) ReserveSeat(ctx context.Context, code string) error {
	if err := tx.store.failReserve[code]; err != nil {
		return err
	}
	sess, ok := tx.session(code)
	if !ok {
		return ErrInvalidSelection
	}
	if sess.Reserved >= sess.Capacity {
		return ErrSessionFull
	}
	sess.Reserved++
	tx.sessions[code] = sess
	return nil
}

func (tx *memTx) ReleaseSeat(ctx context.Context, code string) error {
	sess, ok := tx.session(code)
	if !ok {
		return nil
	}
	if sess.Reserved > 0 {
		sess.Reserved--
	}
	tx.sessions[code] = sess
	return nil
}

func (tx *memTx) UpsertSelection(ctx context.Context, sel *model.Selection) error {
	cp := *sel
	tx.selections[sel.IdentityKey] = &cp
	tx.touchedSels[sel.IdentityKey] = true
	return nil
}

func (tx *memTx) DeleteSelection(ctx context.Context, identityKey string) error {
	tx.selections[identityKey] = nil
	tx.touchedSels[identityKey] = true
	return nil
}

func sortSessions(sessions []model.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Day != sessions[j].Day {
			return sessions[i].Day < sessions[j].Day
		}
		return sessions[i].Slot < sessions[j].Slot
	})
}
