// Package localstore is the client-local JSON-file mirror of users and trips.
// It is the offline source of truth: every write goes through it, and when the
// remote store is unreachable it is the only truth. Three record families
// live under one data directory: users.json, trips.json, and a current_user
// scalar.
//
// Reads never fail on malformed data: a corrupt file degrades to an empty
// collection. Trips older than the retention window are silently dropped and
// the pruned list written back on every read, so the store is self-cleaning.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// Retention is how long a trip stays in the cache, measured from its
// createdAt (updatedAt when createdAt is missing). This is a local cleanup
// policy, not a deletion guarantee on the remote side.
const Retention = 30 * 24 * time.Hour

const (
	usersFile       = "users.json"
	tripsFile       = "trips.json"
	currentUserFile = "current_user"
)

// Store persists users, trips, and the current-user id as JSON files under a
// base directory. A single mutex serializes all access: writes from user
// actions, the synchronizer's merge step, and the retention sweep must not
// interleave, and there is no real parallelism to optimize for.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates the data directory if missing and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("localstore.New: data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore.New: create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// ListUsers returns all cached users. Missing or malformed data yields an
// empty slice, never an error.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers(), nil
}

// FindUserByEmail looks up a user by email, case-insensitively.
// Returns domain.ErrNotFound on a miss.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(email)
	for _, u := range s.loadUsers() {
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("localstore.Store.FindUserByEmail: %w", domain.ErrNotFound)
}

// FindUserByID looks up a user by id. Returns domain.ErrNotFound on a miss.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.loadUsers() {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("localstore.Store.FindUserByID: %w", domain.ErrNotFound)
}

// PutUser upserts a user by id.
func (s *Store) PutUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.loadUsers()
	replaced := false
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	if err := s.save(usersFile, users); err != nil {
		return fmt.Errorf("localstore.Store.PutUser: %w", err)
	}
	return nil
}

// ListTrips returns all cached trips. As a side effect, trips older than the
// retention window are dropped and the pruned list is written back.
func (s *Store) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAndPruneTrips(), nil
}

// ListTripsForUser returns cached trips whose member list contains userID,
// after the same retention sweep as ListTrips.
func (s *Store) ListTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Trip
	for _, t := range s.loadAndPruneTrips() {
		if t.HasUser(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// FindTrip returns the cached trip with the given id.
// Returns domain.ErrNotFound on a miss.
func (s *Store) FindTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.loadAndPruneTrips() {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("localstore.Store.FindTrip: %w", domain.ErrNotFound)
}

// FindTripByShareToken scans the cache for a trip carrying the given share
// token. This is the local fallback for share-link resolution.
func (s *Store) FindTripByShareToken(ctx context.Context, token string) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.loadAndPruneTrips() {
		if t.ShareToken != "" && t.ShareToken == token {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("localstore.Store.FindTripByShareToken: %w", domain.ErrNotFound)
}

// PutTrip upserts a trip by id.
func (s *Store) PutTrip(ctx context.Context, trip domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trips := s.loadTrips()
	replaced := false
	for i := range trips {
		if trips[i].ID == trip.ID {
			trips[i] = trip
			replaced = true
			break
		}
	}
	if !replaced {
		trips = append(trips, trip)
	}
	if err := s.save(tripsFile, trips); err != nil {
		return fmt.Errorf("localstore.Store.PutTrip: %w", err)
	}
	return nil
}

// DeleteTrip removes a trip from the cache. Deleting a trip that is not
// cached is a no-op.
func (s *Store) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trips := s.loadTrips()
	kept := trips[:0]
	for _, t := range trips {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err := s.save(tripsFile, kept); err != nil {
		return fmt.Errorf("localstore.Store.DeleteTrip: %w", err)
	}
	return nil
}

// CurrentUserID returns the persisted session user id, or domain.ErrNotFound
// when no session is stored.
func (s *Store) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(filepath.Join(s.dir, currentUserFile))
	if err != nil {
		return uuid.Nil, fmt.Errorf("localstore.Store.CurrentUserID: %w", domain.ErrNotFound)
	}
	id, err := uuid.Parse(strings.TrimSpace(string(raw)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("localstore.Store.CurrentUserID: %w", domain.ErrNotFound)
	}
	return id, nil
}

// SetCurrentUser persists the session user id. uuid.Nil clears the session.
func (s *Store) SetCurrentUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, currentUserFile)
	if id == uuid.Nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("localstore.Store.SetCurrentUser: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(id.String()), 0o644); err != nil {
		return fmt.Errorf("localstore.Store.SetCurrentUser: %w", err)
	}
	return nil
}

// ---- file helpers ----------------------------------------------------------
// Callers must hold s.mu.

func (s *Store) loadUsers() []domain.User {
	var users []domain.User
	if !s.load(usersFile, &users) {
		return nil
	}
	return users
}

func (s *Store) loadTrips() []domain.Trip {
	var trips []domain.Trip
	if !s.load(tripsFile, &trips) {
		return nil
	}
	return trips
}

// loadAndPruneTrips applies the retention sweep and writes the pruned list
// back when anything was dropped.
func (s *Store) loadAndPruneTrips() []domain.Trip {
	trips := s.loadTrips()
	cutoff := time.Now().Add(-Retention)

	kept := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		ref := t.CreatedAt
		if ref.IsZero() {
			ref = t.UpdatedAt
		}
		if ref.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) < len(trips) {
		// Best effort: a failed write-back just means the sweep runs again
		// on the next read.
		_ = s.save(tripsFile, kept)
	}
	return kept
}

// load decodes the named file into v and reports whether decoding succeeded.
// Missing or malformed files are not errors; callers fall back to an empty
// collection so a corrupt cache can never crash the read path.
func (s *Store) load(name string, v any) bool {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *Store) save(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), raw, 0o644)
}
