// Package remotestore is the authoritative shared document store, backed by
// Postgres. Each trip is persisted as one denormalized JSONB document plus a
// few indexed columns (users, updated_at, share_token) for queries. The
// schema stays compatible with a hosted Supabase project.
//
// Every operation is fallible by design and degrades gracefully: when the
// store is not configured, or any call fails or times out, the operation
// returns domain.ErrRemoteUnavailable and the caller falls back to the local
// cache. Remote trouble is never a user-visible error.
package remotestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DefaultTimeout bounds every remote call so a slow store degrades to the
// local cache instead of stalling the caller.
const DefaultTimeout = 5 * time.Second

// Store is the Postgres-backed remote trip/user store.
// A Store constructed with a nil db is the "not configured" store: every
// operation short-circuits to domain.ErrRemoteUnavailable without logging.
type Store struct {
	db      db
	timeout time.Duration
	log     *slog.Logger
}

// New constructs a Store. Pass a nil db when the remote store is not
// configured; pass timeout <= 0 to use DefaultTimeout.
func New(db db, timeout time.Duration, log *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, timeout: timeout, log: log}
}

// Configured reports whether the store has a database behind it.
func (s *Store) Configured() bool {
	return s.db != nil
}

// opCtx applies the per-call timeout.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// unavailable wraps any remote failure into domain.ErrRemoteUnavailable,
// logging the underlying cause at warn level. Configuration absence is
// silent: it is the expected steady state for offline-only installs.
func (s *Store) unavailable(op string, err error) error {
	if err != nil {
		s.log.Warn("remote store operation failed", "op", op, "error", err)
	}
	return fmt.Errorf("remotestore.Store.%s: %w", op, domain.ErrRemoteUnavailable)
}

// ---- trips -----------------------------------------------------------------

// UpsertTrip writes a trip row keyed by id, overwriting the stored document
// unconditionally. There is no server-side merge; conflict resolution happens
// client-side in the sync package before this call.
func (s *Store) UpsertTrip(ctx context.Context, trip domain.Trip) error {
	if s.db == nil {
		return s.unavailable("UpsertTrip", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("remotestore.Store.UpsertTrip: marshal: %w", err)
	}
	chat, err := json.Marshal(trip.Chat)
	if err != nil {
		return fmt.Errorf("remotestore.Store.UpsertTrip: marshal chat: %w", err)
	}

	const q = `
		INSERT INTO trips (id, name, users, progress, chat, created_by, share_token, trip_data, created_at, updated_at)
		VALUES (@id, @name, @users, @progress, @chat, @created_by, @share_token, @trip_data, @created_at, @updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			users       = EXCLUDED.users,
			progress    = EXCLUDED.progress,
			chat        = EXCLUDED.chat,
			created_by  = EXCLUDED.created_by,
			share_token = COALESCE(NULLIF(EXCLUDED.share_token, ''), trips.share_token),
			trip_data   = EXCLUDED.trip_data,
			updated_at  = EXCLUDED.updated_at`

	args := pgx.NamedArgs{
		"id":          trip.ID.String(),
		"name":        trip.Name,
		"users":       uuidStrings(trip.Users),
		"progress":    trip.Progress,
		"chat":        chat,
		"created_by":  trip.CreatedBy.String(),
		"share_token": trip.ShareToken,
		"trip_data":   doc,
		"created_at":  trip.CreatedAt,
		"updated_at":  trip.UpdatedAt,
	}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return s.unavailable("UpsertTrip", err)
	}
	return nil
}

// FindTrip returns the trip document with the given id.
// Returns domain.ErrNotFound when no row matches, a valid outcome distinct
// from the store being unreachable.
func (s *Store) FindTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	if s.db == nil {
		return domain.Trip{}, s.unavailable("FindTrip", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `SELECT trip_data FROM trips WHERE id = @id`
	trip, err := scanTripDoc(s.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id.String()}))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("remotestore.Store.FindTrip: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, s.unavailable("FindTrip", err)
	}
	return trip, nil
}

// ListTripsForUser returns all trip documents whose member column contains
// userID. A configured, reachable store with no matches returns an empty
// non-nil slice; an unreachable store returns ErrRemoteUnavailable. Callers
// must distinguish the two.
func (s *Store) ListTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	if s.db == nil {
		return nil, s.unavailable("ListTripsForUser", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
		SELECT trip_data FROM trips
		WHERE users @> ARRAY[@user_id]::text[]
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID.String()})
	if err != nil {
		return nil, s.unavailable("ListTripsForUser", err)
	}
	trips, err := collectTripDocs(rows)
	if err != nil {
		return nil, s.unavailable("ListTripsForUser", err)
	}
	return trips, nil
}

// ListAllTrips returns every trip document ordered by recency.
func (s *Store) ListAllTrips(ctx context.Context) ([]domain.Trip, error) {
	if s.db == nil {
		return nil, s.unavailable("ListAllTrips", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `SELECT trip_data FROM trips ORDER BY updated_at DESC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, s.unavailable("ListAllTrips", err)
	}
	trips, err := collectTripDocs(rows)
	if err != nil {
		return nil, s.unavailable("ListAllTrips", err)
	}
	return trips, nil
}

// DeleteTrip removes a trip row. Deleting a missing row is not an error.
func (s *Store) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return s.unavailable("DeleteTrip", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `DELETE FROM trips WHERE id = @id`
	if _, err := s.db.Exec(ctx, q, pgx.NamedArgs{"id": id.String()}); err != nil {
		return s.unavailable("DeleteTrip", err)
	}
	return nil
}

// SetShareToken persists a share token on the trip row.
func (s *Store) SetShareToken(ctx context.Context, tripID uuid.UUID, token string) error {
	if s.db == nil {
		return s.unavailable("SetShareToken", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `UPDATE trips SET share_token = @token WHERE id = @id`
	tag, err := s.db.Exec(ctx, q, pgx.NamedArgs{"id": tripID.String(), "token": token})
	if err != nil {
		return s.unavailable("SetShareToken", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("remotestore.Store.SetShareToken: %w", domain.ErrNotFound)
	}
	return nil
}

// FindTripByShareToken resolves a share token to its trip document.
// Returns domain.ErrNotFound when no trip carries the token.
func (s *Store) FindTripByShareToken(ctx context.Context, token string) (domain.Trip, error) {
	if s.db == nil {
		return domain.Trip{}, s.unavailable("FindTripByShareToken", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `SELECT trip_data FROM trips WHERE share_token = @token`
	trip, err := scanTripDoc(s.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("remotestore.Store.FindTripByShareToken: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, s.unavailable("FindTripByShareToken", err)
	}
	return trip, nil
}

// ---- users -----------------------------------------------------------------

// UpsertUser writes a user row keyed by id, case-folding the email first.
func (s *Store) UpsertUser(ctx context.Context, user domain.User) error {
	if s.db == nil {
		return s.unavailable("UpsertUser", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (@id, @email, @name, @password_hash, @created_at)
		ON CONFLICT (id) DO UPDATE SET
			email         = EXCLUDED.email,
			name          = EXCLUDED.name,
			password_hash = EXCLUDED.password_hash`

	args := pgx.NamedArgs{
		"id":            user.ID.String(),
		"email":         strings.ToLower(user.Email),
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
	}
	if _, err := s.db.Exec(ctx, q, args); err != nil {
		return s.unavailable("UpsertUser", err)
	}
	return nil
}

// FindUserByEmail looks up a user by case-folded email.
// Returns domain.ErrNotFound on a miss.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if s.db == nil {
		return domain.User{}, s.unavailable("FindUserByEmail", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = @email`
	return s.scanUserResult("FindUserByEmail",
		s.db.QueryRow(ctx, q, pgx.NamedArgs{"email": strings.ToLower(email)}))
}

// FindUserByID looks up a user by id. Returns domain.ErrNotFound on a miss.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if s.db == nil {
		return domain.User{}, s.unavailable("FindUserByID", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = @id`
	return s.scanUserResult("FindUserByID",
		s.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id.String()}))
}

// ListAllUsers returns every user ordered by registration recency.
func (s *Store) ListAllUsers(ctx context.Context) ([]domain.User, error) {
	if s.db == nil {
		return nil, s.unavailable("ListAllUsers", nil)
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	const q = `
		SELECT id, email, name, password_hash, created_at
		FROM users ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, s.unavailable("ListAllUsers", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, s.unavailable("ListAllUsers", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable("ListAllUsers", err)
	}
	return users, nil
}

func (s *Store) scanUserResult(op string, row pgx.Row) (domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("remotestore.Store.%s: %w", op, domain.ErrNotFound)
		}
		return domain.User{}, s.unavailable(op, err)
	}
	return u, nil
}

// ---- scanning --------------------------------------------------------------

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTripDoc decodes the trip_data JSONB column into a domain.Trip.
func scanTripDoc(s scanner) (domain.Trip, error) {
	var raw []byte
	if err := s.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	var trip domain.Trip
	if err := json.Unmarshal(raw, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("decode trip document: %w", err)
	}
	return trip, nil
}

func collectTripDocs(rows pgx.Rows) ([]domain.Trip, error) {
	defer rows.Close()
	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTripDoc(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u  domain.User
		id string
	)
	if err := s.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = parsed
	return u, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
