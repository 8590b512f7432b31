package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/session"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 10 * time.Second

// LocalCache is the slice of the local store the synchronizer needs.
type LocalCache interface {
	ListTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	PutTrip(ctx context.Context, trip domain.Trip) error
}

// RemoteSource is the slice of the remote store the synchronizer needs.
// ListTripsForUser returns domain.ErrRemoteUnavailable when the store is not
// configured or unreachable; the synchronizer treats that as "skip remote
// merge this cycle", never as a failure.
type RemoteSource interface {
	ListTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
}

// Synchronizer periodically reconciles the local cache and every live
// session with the remote store. There is no push channel: convergence
// happens one poll at a time, per user.
type Synchronizer struct {
	local    LocalCache
	remote   RemoteSource
	sessions *session.Registry
	interval time.Duration
	log      *slog.Logger
}

// New constructs a Synchronizer. Pass interval <= 0 for DefaultInterval.
func New(local LocalCache, remote RemoteSource, sessions *session.Registry, interval time.Duration, log *slog.Logger) *Synchronizer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		local:    local,
		remote:   remote,
		sessions: sessions,
		interval: interval,
		log:      log,
	}
}

// Run polls until ctx is cancelled, reconciling every live session each tick.
// Intended to run in its own goroutine from main.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sess := range s.sessions.Live() {
				s.syncSession(ctx, sess)
			}
		}
	}
}

func (s *Synchronizer) syncSession(ctx context.Context, sess *session.Session) {
	trips, err := s.SyncUser(ctx, sess.UserID())
	if err != nil {
		s.log.Warn("sync cycle failed", "user_id", sess.UserID(), "error", err)
		return
	}
	if sess.Refresh(trips) {
		s.log.Debug("active trip refreshed from remote", "user_id", sess.UserID())
	}
}

// SyncUser runs one merge cycle for a user and returns the trip list to
// publish: the local list merged with the remote snapshot when the remote is
// reachable, the local list alone when it is not. Remote-won documents are
// written back to the local cache fire-and-forget.
//
// Only local cache failures produce an error; remote unavailability is an
// expected, silent degradation.
func (s *Synchronizer) SyncUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	local, err := s.local.ListTripsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	remote, err := s.remote.ListTripsForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			s.log.Debug("remote store unavailable this cycle", "user_id", userID)
			return local, nil
		}
		return nil, err
	}
	if len(remote) == 0 {
		return local, nil
	}

	merged, changed := MergeLists(local, remote)
	for _, t := range changed {
		if err := s.local.PutTrip(ctx, t); err != nil {
			s.log.Warn("cache write-back failed", "trip_id", t.ID, "error", err)
		}
	}
	return merged, nil
}
