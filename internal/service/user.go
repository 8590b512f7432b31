package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/session"
)

// UserService implements registration, login, and user lookup with the
// remote-first, cache-fallback read policy.
type UserService struct {
	local    LocalStore
	remote   RemoteStore
	sessions *session.Registry
	log      *slog.Logger
}

// NewUserService constructs a UserService backed by the given stores.
func NewUserService(local LocalStore, remote RemoteStore, sessions *session.Registry, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{local: local, remote: remote, sessions: sessions, log: log}
}

// Register creates a new account. Email is stored case-folded and must be
// unique across both stores; a duplicate yields domain.ErrValidation without
// mutating anything. The new user is written through to the cache and
// best-effort to the remote, a session is started, and the current-user
// record is set.
func (s *UserService) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, fmt.Errorf("%w: a user with this email already exists", domain.ErrValidation)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.local.PutUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	s.mirrorToRemote(ctx, user)

	s.startSession(ctx, user)
	return user, nil
}

// Login authenticates by email and password. Lookup goes remote-first so a
// user registered on another device can log in here; the cache is filled on
// a remote hit. Bad email and bad password are indistinguishable to the
// caller: both return domain.ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return domain.User{}, fmt.Errorf("service.UserService.Login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	s.startSession(ctx, user)
	return user, nil
}

// Logout ends the user's session and clears the persisted current-user record.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) error {
	s.sessions.End(userID)
	if err := s.local.SetCurrentUser(ctx, uuid.Nil); err != nil {
		return fmt.Errorf("service.UserService.Logout: %w", err)
	}
	return nil
}

// GetUserByEmail looks up a user remote-first, filling the cache on a hit,
// and falls back to the cache when the remote is unavailable or misses.
// Returns domain.ErrNotFound when neither store knows the email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.lookup(ctx,
		func() (domain.User, error) { return s.remote.FindUserByEmail(ctx, email) },
		func() (domain.User, error) { return s.local.FindUserByEmail(ctx, email) },
	)
}

// GetUserByID looks up a user remote-first with cache fallback, like
// GetUserByEmail.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.lookup(ctx,
		func() (domain.User, error) { return s.remote.FindUserByID(ctx, id) },
		func() (domain.User, error) { return s.local.FindUserByID(ctx, id) },
	)
}

// lookup is the two-tier read: try remote, mirror a hit into the cache, fall
// back to the cache on unavailability. A remote miss still consults the cache
// so locally registered users resolve while their remote write is in flight.
func (s *UserService) lookup(ctx context.Context, fromRemote, fromLocal func() (domain.User, error)) (domain.User, error) {
	user, err := fromRemote()
	if err == nil {
		if putErr := s.local.PutUser(ctx, user); putErr != nil {
			s.log.Warn("user cache fill failed", "user_id", user.ID, "error", putErr)
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrRemoteUnavailable) && !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}
	return fromLocal()
}

// mirrorToRemote pushes a user to the remote store best-effort.
func (s *UserService) mirrorToRemote(ctx context.Context, user domain.User) {
	if err := s.remote.UpsertUser(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrRemoteUnavailable) {
			s.log.Warn("remote user write failed", "user_id", user.ID, "error", err)
		}
	}
}

// startSession opens the session registry entry and persists the
// current-user record. Session bookkeeping failures are logged, not
// surfaced: authentication already succeeded.
func (s *UserService) startSession(ctx context.Context, user domain.User) {
	s.sessions.Start(user.ID)
	if err := s.local.SetCurrentUser(ctx, user.ID); err != nil {
		s.log.Warn("persist current user failed", "user_id", user.ID, "error", err)
	}
}
