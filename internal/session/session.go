// Package session tracks live editing sessions. A session is created at login
// and destroyed at logout; it carries the current user and the trip that user
// is actively editing, giving the synchronizer an explicit context to act on
// instead of ambient global state.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// Session is one user's live editing context. The active trip is owned
// exclusively by this session: the synchronizer may replace it with a
// strictly newer version pulled from the remote store.
type Session struct {
	mu     sync.RWMutex
	userID uuid.UUID
	active *domain.Trip
}

// UserID returns the session owner.
func (s *Session) UserID() uuid.UUID {
	return s.userID
}

// ActiveTrip returns a copy of the trip being edited, if any.
func (s *Session) ActiveTrip() (domain.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return domain.Trip{}, false
	}
	return *s.active, true
}

// SetActiveTrip records the trip the user opened for editing.
func (s *Session) SetActiveTrip(trip domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &trip
}

// ClearActiveTrip drops the editing context, e.g. when the user returns to
// the dashboard or the trip was deleted.
func (s *Session) ClearActiveTrip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

// Refresh replaces the active trip with a version from trips if one matches
// its id and is strictly newer by updatedAt. A strictly-newer check means a
// session never regresses its own fresher edit because of its own slow write
// reflected back by the remote store. Returns true when a replacement
// happened. Note the known last-writer-wins hazard: in-progress edits not yet
// persisted are overwritten by a newer remote version.
func (s *Session) Refresh(trips []domain.Trip) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return false
	}
	for i := range trips {
		if trips[i].ID == s.active.ID && trips[i].UpdatedAt.After(s.active.UpdatedAt) {
			t := trips[i]
			s.active = &t
			return true
		}
	}
	return false
}

// Registry holds all live sessions, one per user id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Start returns the user's session, creating it on first login. A second
// login from the same user reuses the existing session and its active trip.
func (r *Registry) Start(userID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := &Session{userID: userID}
	r.sessions[userID] = s
	return s
}

// Get returns the user's session if one is live.
func (r *Registry) Get(userID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// End destroys the user's session at logout.
func (r *Registry) End(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Live returns a snapshot of all live sessions, in no particular order.
// The synchronizer iterates this on every poll cycle.
func (r *Registry) Live() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
