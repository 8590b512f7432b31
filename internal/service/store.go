// Package service contains the business logic of the sync core: registration
// and login with remote-then-cache fallback, dual-write trip persistence, the
// per-entity mutation operations, and share-token issuing. Services validate
// inputs, enforce business rules, and orchestrate store calls; no SQL and no
// file IO lives here.
//
// The degrade-to-local policy lives in this package and nowhere else: every
// remote call site treats domain.ErrRemoteUnavailable as "use the cache",
// and no remote failure ever escapes to a caller.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// LocalStore defines the local-cache operations the services depend on.
// Implemented by *localstore.Store. Local writes are authoritative for the
// session: if they fail, the operation fails.
type LocalStore interface {
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	PutUser(ctx context.Context, user domain.User) error
	SetCurrentUser(ctx context.Context, id uuid.UUID) error

	ListTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	FindTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	FindTripByShareToken(ctx context.Context, token string) (domain.Trip, error)
	PutTrip(ctx context.Context, trip domain.Trip) error
	DeleteTrip(ctx context.Context, id uuid.UUID) error
}

// RemoteStore defines the remote-store operations the services depend on.
// Implemented by *remotestore.Store. Every method may return
// domain.ErrRemoteUnavailable; services treat that as a silent no-op.
type RemoteStore interface {
	UpsertUser(ctx context.Context, user domain.User) error
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	UpsertTrip(ctx context.Context, trip domain.Trip) error
	FindTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) error
	SetShareToken(ctx context.Context, tripID uuid.UUID, token string) error
	FindTripByShareToken(ctx context.Context, token string) (domain.Trip, error)
}

// Syncer runs one local/remote merge cycle for a user.
// Implemented by *sync.Synchronizer.
type Syncer interface {
	SyncUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
}
