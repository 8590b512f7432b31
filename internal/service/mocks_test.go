package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// fakeLocal is an in-memory stand-in for the JSON cache. It never fails
// unless an error hook is set.
type fakeLocal struct {
	mu      sync.Mutex
	users   map[uuid.UUID]domain.User
	trips   map[uuid.UUID]domain.Trip
	current uuid.UUID
	putErr  error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{
		users: make(map[uuid.UUID]domain.User),
		trips: make(map[uuid.UUID]domain.Trip),
	}
}

func (f *fakeLocal) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeLocal) FindUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeLocal) PutUser(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeLocal) SetCurrentUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = id
	return nil
}

func (f *fakeLocal) ListTripsForUser(_ context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Trip
	for _, t := range f.trips {
		if t.HasUser(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLocal) FindTrip(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeLocal) FindTripByShareToken(_ context.Context, token string) (domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.trips {
		if t.ShareToken != "" && t.ShareToken == token {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

func (f *fakeLocal) PutTrip(_ context.Context, trip domain.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeLocal) DeleteTrip(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.trips, id)
	return nil
}

// mockRemote is a function-field mock for the remote store. Any method whose
// field is nil reports the remote as unavailable, which makes "remote down"
// the zero-value behavior.
type mockRemote struct {
	upsertUserFn           func(ctx context.Context, user domain.User) error
	findUserByEmailFn      func(ctx context.Context, email string) (domain.User, error)
	findUserByIDFn         func(ctx context.Context, id uuid.UUID) (domain.User, error)
	upsertTripFn           func(ctx context.Context, trip domain.Trip) error
	findTripFn             func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	deleteTripFn           func(ctx context.Context, id uuid.UUID) error
	setShareTokenFn        func(ctx context.Context, tripID uuid.UUID, token string) error
	findTripByShareTokenFn func(ctx context.Context, token string) (domain.Trip, error)
}

func (m *mockRemote) UpsertUser(ctx context.Context, user domain.User) error {
	if m.upsertUserFn == nil {
		return domain.ErrRemoteUnavailable
	}
	return m.upsertUserFn(ctx, user)
}

func (m *mockRemote) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if m.findUserByEmailFn == nil {
		return domain.User{}, domain.ErrRemoteUnavailable
	}
	return m.findUserByEmailFn(ctx, email)
}

func (m *mockRemote) FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if m.findUserByIDFn == nil {
		return domain.User{}, domain.ErrRemoteUnavailable
	}
	return m.findUserByIDFn(ctx, id)
}

func (m *mockRemote) UpsertTrip(ctx context.Context, trip domain.Trip) error {
	if m.upsertTripFn == nil {
		return domain.ErrRemoteUnavailable
	}
	return m.upsertTripFn(ctx, trip)
}

func (m *mockRemote) FindTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	if m.findTripFn == nil {
		return domain.Trip{}, domain.ErrRemoteUnavailable
	}
	return m.findTripFn(ctx, id)
}

func (m *mockRemote) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	if m.deleteTripFn == nil {
		return domain.ErrRemoteUnavailable
	}
	return m.deleteTripFn(ctx, id)
}

func (m *mockRemote) SetShareToken(ctx context.Context, tripID uuid.UUID, token string) error {
	if m.setShareTokenFn == nil {
		return domain.ErrRemoteUnavailable
	}
	return m.setShareTokenFn(ctx, tripID, token)
}

func (m *mockRemote) FindTripByShareToken(ctx context.Context, token string) (domain.Trip, error) {
	if m.findTripByShareTokenFn == nil {
		return domain.Trip{}, domain.ErrRemoteUnavailable
	}
	return m.findTripByShareTokenFn(ctx, token)
}

// mockSyncer is a function-field mock for the synchronizer.
type mockSyncer struct {
	syncUserFn func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
}

func (m *mockSyncer) SyncUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	if m.syncUserFn == nil {
		return nil, nil
	}
	return m.syncUserFn(ctx, userID)
}
