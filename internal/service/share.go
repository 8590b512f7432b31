package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
)

// shareTokenLength is the character count of an issued token. Tokens are
// lower-case base-36, ~134 bits of entropy at 26 characters.
const shareTokenLength = 26

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ShareService issues and resolves trip share tokens. Issuing never fails
// visibly once the trip is known: the token is generated locally and the
// remote registration is best-effort, so a share link handed to a friend
// works as soon as the next sync pushes the trip.
type ShareService struct {
	local   LocalStore
	remote  RemoteStore
	baseURL string
	log     *slog.Logger
}

// NewShareService constructs a ShareService. baseURL is the public origin
// share links are built on, without a trailing slash.
func NewShareService(local LocalStore, remote RemoteStore, baseURL string, log *slog.Logger) *ShareService {
	if log == nil {
		log = slog.Default()
	}
	return &ShareService{
		local:   local,
		remote:  remote,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// ShareLink pairs a token with the full URL a user can paste to a friend.
type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// IssueToken returns the trip's share link, generating and persisting a token
// on first call. The token is stored without advancing updatedAt: issuing a
// link is not an edit and must not win a concurrent merge.
func (s *ShareService) IssueToken(ctx context.Context, actor, tripID uuid.UUID) (ShareLink, error) {
	trip, err := s.local.FindTrip(ctx, tripID)
	if err != nil {
		return ShareLink{}, fmt.Errorf("service.ShareService.IssueToken: %w", err)
	}
	if !trip.HasUser(actor) {
		return ShareLink{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}

	if trip.ShareToken == "" {
		token, err := newShareToken()
		if err != nil {
			return ShareLink{}, fmt.Errorf("service.ShareService.IssueToken: %w", err)
		}
		trip.ShareToken = token

		if err := s.local.PutTrip(ctx, trip); err != nil {
			return ShareLink{}, fmt.Errorf("service.ShareService.IssueToken: %w", err)
		}
		if err := s.remote.SetShareToken(ctx, tripID, token); err != nil {
			if !errors.Is(err, domain.ErrRemoteUnavailable) && !errors.Is(err, domain.ErrNotFound) {
				s.log.Warn("remote share token write failed", "trip_id", tripID, "error", err)
			}
		}
	}

	return s.link(trip.ShareToken), nil
}

// ResolveToken finds the trip behind a share token, remote-first so links
// issued on other devices resolve here. A remote hit is mirrored into the
// cache so the subsequent join works even if the remote drops out.
func (s *ShareService) ResolveToken(ctx context.Context, token string) (domain.Trip, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Trip{}, fmt.Errorf("%w: empty share token", domain.ErrValidation)
	}

	trip, err := s.remote.FindTripByShareToken(ctx, token)
	if err == nil {
		if putErr := s.local.PutTrip(ctx, trip); putErr != nil {
			s.log.Warn("trip cache fill failed", "trip_id", trip.ID, "error", putErr)
		}
		return trip, nil
	}
	if !errors.Is(err, domain.ErrRemoteUnavailable) && !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("service.ShareService.ResolveToken: %w", err)
	}

	trip, err = s.local.FindTripByShareToken(ctx, token)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.ShareService.ResolveToken: %w", err)
	}
	return trip, nil
}

// JoinTrip adds the user to the trip behind the token. Joining twice is a
// no-op that still returns the trip; an actual membership change is an edit
// and goes through the usual dual-write.
func (s *ShareService) JoinTrip(ctx context.Context, userID uuid.UUID, token string) (domain.Trip, error) {
	trip, err := s.ResolveToken(ctx, token)
	if err != nil {
		return domain.Trip{}, err
	}

	if !trip.AddUser(userID) {
		return trip, nil
	}
	trip.Touch()

	if err := s.local.PutTrip(ctx, trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.ShareService.JoinTrip: %w", err)
	}
	if err := s.remote.UpsertTrip(ctx, trip); err != nil {
		if !errors.Is(err, domain.ErrRemoteUnavailable) {
			s.log.Warn("remote trip write failed", "trip_id", trip.ID, "error", err)
		}
	}
	return trip, nil
}

func (s *ShareService) link(token string) ShareLink {
	return ShareLink{
		Token: token,
		URL:   s.baseURL + "/share/" + token,
	}
}

// newShareToken draws shareTokenLength base-36 characters from crypto/rand.
func newShareToken() (string, error) {
	max := big.NewInt(int64(len(base36)))
	b := make([]byte, shareTokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate share token: %w", err)
		}
		b[i] = base36[n.Int64()]
	}
	return string(b), nil
}
