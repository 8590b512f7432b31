package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/session"
)

// MaxCoverImageBytes caps the decoded size of a trip cover image. Anything
// beyond size validation (formats, storage backends) is out of scope.
const MaxCoverImageBytes = 5 << 20

// TripService implements all trip mutations. Every mutation follows the same
// shape: load the document, apply a pure domain transformation, recompute the
// cached progress score, advance updatedAt, then dual-write: cache first
// (authoritative for this session), remote best-effort.
type TripService struct {
	local           LocalStore
	remote          RemoteStore
	syncer          Syncer
	sessions        *session.Registry
	policy          domain.ApprovalPolicy
	defaultCurrency string
	log             *slog.Logger
}

// NewTripService constructs a TripService.
func NewTripService(local LocalStore, remote RemoteStore, syncer Syncer, sessions *session.Registry, policy domain.ApprovalPolicy, defaultCurrency string, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.Default()
	}
	if !domain.ValidApprovalPolicy(policy) {
		policy = domain.ApprovalIndependent
	}
	if defaultCurrency == "" {
		defaultCurrency = "EUR"
	}
	return &TripService{
		local:           local,
		remote:          remote,
		syncer:          syncer,
		sessions:        sessions,
		policy:          policy,
		defaultCurrency: defaultCurrency,
		log:             log,
	}
}

// CreateTrip starts a new empty trip owned by creator.
func (s *TripService) CreateTrip(ctx context.Context, creator uuid.UUID, name, currency string) (domain.Trip, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	trip := domain.NewTrip(name, creator, currency)
	if err := s.persist(ctx, creator, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}
	return trip, nil
}

// GetTripsForUser returns the user's trip list after one merge cycle, so a
// read is never staler than the last poll plus this call. When the remote is
// unreachable the cached list is returned as-is.
func (s *TripService) GetTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.syncer.SyncUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.GetTripsForUser: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// GetTrip returns one trip, cache-first with a remote fallback for trips not
// yet mirrored locally (e.g. just joined on another device).
func (s *TripService) GetTrip(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	if !trip.HasUser(actor) {
		return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}
	return trip, nil
}

// SaveTrip persists a caller-supplied document wholesale: progress is
// recomputed, updatedAt advanced, and both stores written. Membership is
// checked against the stored document, not the submitted one, so a forged
// member list cannot take over an existing trip. Creator identity survives
// the replace and the creator always remains a member.
func (s *TripService) SaveTrip(ctx context.Context, actor uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	stored, err := s.load(ctx, trip.ID)
	switch {
	case err == nil:
		if !stored.HasUser(actor) {
			return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
		}
		trip.CreatedBy = stored.CreatedBy
		trip.CreatedAt = stored.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		if !trip.HasUser(actor) {
			return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
		}
	default:
		return domain.Trip{}, fmt.Errorf("service.TripService.SaveTrip: %w", err)
	}
	trip.AddUser(trip.CreatedBy)

	if err := s.persist(ctx, actor, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SaveTrip: %w", err)
	}
	return trip, nil
}

// DeleteTrip removes the trip from both stores. Remote deletion is
// best-effort; the 30-day retention sweep is the backstop for replicas that
// miss it.
func (s *TripService) DeleteTrip(ctx context.Context, actor, tripID uuid.UUID) error {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}
	if !trip.HasUser(actor) {
		return fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}

	if err := s.local.DeleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}
	if err := s.remote.DeleteTrip(ctx, tripID); err != nil && !errors.Is(err, domain.ErrRemoteUnavailable) {
		s.log.Warn("remote trip delete failed", "trip_id", tripID, "error", err)
	}

	if sess, ok := s.sessions.Get(actor); ok {
		if active, exists := sess.ActiveTrip(); exists && active.ID == tripID {
			sess.ClearActiveTrip()
		}
	}
	return nil
}

// ---- places ----------------------------------------------------------------

// AddPlace appends a place at the end of the manual ordering.
func (s *TripService) AddPlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error) {
	if strings.TrimSpace(place.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		place.ID = uuid.New()
		place.Order = t.NextPlaceOrder()
		place.CreatedAt = time.Now().UTC()
		if place.Status == "" {
			place.Status = domain.StatusNew
		}
		if place.Currency == "" {
			place.Currency = t.Currency
		}
		t.Places = append(t.Places, place)
		return nil
	})
}

// UpdatePlace replaces the editable fields of an existing place. Identity,
// rank, and creation time are preserved.
func (s *TripService) UpdatePlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error) {
	if strings.TrimSpace(place.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Places {
			if t.Places[i].ID == place.ID {
				place.Order = t.Places[i].Order
				place.CreatedAt = t.Places[i].CreatedAt
				t.Places[i] = place
				return nil
			}
		}
		return fmt.Errorf("update place: %w", domain.ErrNotFound)
	})
}

// DeletePlace removes a place and renumbers the remaining ranks so they stay
// a dense 1..N sequence.
func (s *TripService) DeletePlace(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		idx := -1
		for i := range t.Places {
			if t.Places[i].ID == placeID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("delete place: %w", domain.ErrNotFound)
		}
		removed := t.Places[idx].Order
		t.Places = append(t.Places[:idx], t.Places[idx+1:]...)
		for i := range t.Places {
			if t.Places[i].Order > removed {
				t.Places[i].Order--
			}
		}
		return nil
	})
}

// MovePlaceUp moves a place one rank earlier in the sequence.
func (s *TripService) MovePlaceUp(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.MovePlaceUp(placeID)
	})
}

// MovePlaceDown moves a place one rank later in the sequence.
func (s *TripService) MovePlaceDown(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.MovePlaceDown(placeID)
	})
}

// ---- activities ------------------------------------------------------------

// AddActivity proposes a new activity: unapproved, empty vote set.
func (s *TripService) AddActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error) {
	if strings.TrimSpace(activity.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if activity.Day < 1 {
		return domain.Trip{}, fmt.Errorf("%w: day must be at least 1", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		activity.ID = uuid.New()
		activity.CreatedBy = actor
		activity.Votes = nil
		activity.Approved = false
		activity.CreatedAt = time.Now().UTC()
		if activity.Status == "" {
			activity.Status = domain.StatusNew
		}
		if activity.Currency == "" {
			activity.Currency = t.Currency
		}
		t.Activities = append(t.Activities, activity)
		return nil
	})
}

// UpdateActivity replaces the editable fields of an activity. Votes, creator,
// and creation time are preserved; the approved flag follows the submitted
// status so the two never disagree after an edit.
func (s *TripService) UpdateActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error) {
	if strings.TrimSpace(activity.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Activities {
			if t.Activities[i].ID == activity.ID {
				activity.Votes = t.Activities[i].Votes
				activity.CreatedBy = t.Activities[i].CreatedBy
				activity.CreatedAt = t.Activities[i].CreatedAt
				activity.Approved = activity.Status == domain.StatusApproved
				t.Activities[i] = activity
				return nil
			}
		}
		return fmt.Errorf("update activity: %w", domain.ErrNotFound)
	})
}

// DeleteActivity removes an activity outright; rejected proposals are not
// retained.
func (s *TripService) DeleteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.RemoveActivity(activityID)
	})
}

// VoteActivity toggles the actor's vote on a proposal.
func (s *TripService) VoteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.ToggleVote(activityID, actor)
	})
}

// ApproveActivity promotes a proposal to the itinerary under the configured
// approval policy. Only the trip creator may approve.
func (s *TripService) ApproveActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.ApproveActivity(activityID, actor, s.policy)
	})
}

// ---- accommodations --------------------------------------------------------

// AddAccommodation appends a lodging option.
func (s *TripService) AddAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error) {
	if strings.TrimSpace(acc.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		acc.ID = uuid.New()
		acc.CreatedAt = time.Now().UTC()
		if acc.Status == "" {
			acc.Status = domain.StatusNew
		}
		if acc.Currency == "" {
			acc.Currency = t.Currency
		}
		if acc.Guests < 1 {
			acc.Guests = 1
		}
		t.Accommodations = append(t.Accommodations, acc)
		return nil
	})
}

// UpdateAccommodation replaces the editable fields of an accommodation.
func (s *TripService) UpdateAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error) {
	if strings.TrimSpace(acc.Name) == "" {
		return domain.Trip{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Accommodations {
			if t.Accommodations[i].ID == acc.ID {
				acc.Votes = t.Accommodations[i].Votes
				acc.CreatedAt = t.Accommodations[i].CreatedAt
				t.Accommodations[i] = acc
				return nil
			}
		}
		return fmt.Errorf("update accommodation: %w", domain.ErrNotFound)
	})
}

// DeleteAccommodation removes an accommodation.
func (s *TripService) DeleteAccommodation(ctx context.Context, actor, tripID, accID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Accommodations {
			if t.Accommodations[i].ID == accID {
				t.Accommodations = append(t.Accommodations[:i], t.Accommodations[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("delete accommodation: %w", domain.ErrNotFound)
	})
}

// ---- transports ------------------------------------------------------------

// AddTransport appends a travel leg.
func (s *TripService) AddTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error) {
	if !domain.ValidTransportType(tr.Type) {
		return domain.Trip{}, fmt.Errorf("%w: unknown transport type %q", domain.ErrValidation, tr.Type)
	}
	if strings.TrimSpace(tr.From) == "" || strings.TrimSpace(tr.To) == "" {
		return domain.Trip{}, fmt.Errorf("%w: from and to are required", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		tr.ID = uuid.New()
		tr.CreatedAt = time.Now().UTC()
		if tr.Status == "" {
			tr.Status = domain.StatusNew
		}
		if tr.Currency == "" {
			tr.Currency = t.Currency
		}
		if tr.Passengers < 1 {
			tr.Passengers = 1
		}
		t.Transports = append(t.Transports, tr)
		return nil
	})
}

// UpdateTransport replaces the editable fields of a transport leg.
func (s *TripService) UpdateTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error) {
	if !domain.ValidTransportType(tr.Type) {
		return domain.Trip{}, fmt.Errorf("%w: unknown transport type %q", domain.ErrValidation, tr.Type)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Transports {
			if t.Transports[i].ID == tr.ID {
				tr.CreatedAt = t.Transports[i].CreatedAt
				t.Transports[i] = tr
				return nil
			}
		}
		return fmt.Errorf("update transport: %w", domain.ErrNotFound)
	})
}

// DeleteTransport removes a transport leg.
func (s *TripService) DeleteTransport(ctx context.Context, actor, tripID, transportID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Transports {
			if t.Transports[i].ID == transportID {
				t.Transports = append(t.Transports[:i], t.Transports[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("delete transport: %w", domain.ErrNotFound)
	})
}

// ---- expenses --------------------------------------------------------------

// AddExpense records a shared cost. SharedBy defaults to the full member
// list when empty; every sharer and the payer must be members.
func (s *TripService) AddExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error) {
	if strings.TrimSpace(exp.Description) == "" {
		return domain.Trip{}, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if exp.Amount <= 0 {
		return domain.Trip{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		if exp.PaidBy == uuid.Nil {
			exp.PaidBy = actor
		}
		if len(exp.SharedBy) == 0 {
			exp.SharedBy = append([]uuid.UUID(nil), t.Users...)
		}
		exp.SharedBy = dedupeSharers(exp.SharedBy)
		if err := validateExpenseMembers(t, exp); err != nil {
			return err
		}
		exp.ID = uuid.New()
		exp.CreatedAt = time.Now().UTC()
		if exp.Currency == "" {
			exp.Currency = t.Currency
		}
		t.Expenses = append(t.Expenses, exp)
		return nil
	})
}

// UpdateExpense replaces an expense wholesale; expenses are edited by full
// replace, never patched.
func (s *TripService) UpdateExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error) {
	if exp.Amount <= 0 {
		return domain.Trip{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		if len(exp.SharedBy) == 0 {
			exp.SharedBy = append([]uuid.UUID(nil), t.Users...)
		}
		exp.SharedBy = dedupeSharers(exp.SharedBy)
		if err := validateExpenseMembers(t, exp); err != nil {
			return err
		}
		for i := range t.Expenses {
			if t.Expenses[i].ID == exp.ID {
				exp.CreatedAt = t.Expenses[i].CreatedAt
				t.Expenses[i] = exp
				return nil
			}
		}
		return fmt.Errorf("update expense: %w", domain.ErrNotFound)
	})
}

// DeleteExpense removes an expense.
func (s *TripService) DeleteExpense(ctx context.Context, actor, tripID, expenseID uuid.UUID) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		for i := range t.Expenses {
			if t.Expenses[i].ID == expenseID {
				t.Expenses = append(t.Expenses[:i], t.Expenses[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("delete expense: %w", domain.ErrNotFound)
	})
}

// dedupeSharers drops repeated ids while keeping first-seen order. SharedBy
// is a set: a repeated sharer would be billed one share yet inflate the
// divisor, throwing the group balance off zero.
func dedupeSharers(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validateExpenseMembers(t *domain.Trip, exp domain.Expense) error {
	if !t.HasUser(exp.PaidBy) {
		return fmt.Errorf("%w: payer is not a trip member", domain.ErrValidation)
	}
	for _, u := range exp.SharedBy {
		if !t.HasUser(u) {
			return fmt.Errorf("%w: sharer is not a trip member", domain.ErrValidation)
		}
	}
	return nil
}

// ---- misc mutations --------------------------------------------------------

// SetEntityStatus sets the flat card status of any sub-entity.
func (s *TripService) SetEntityStatus(ctx context.Context, actor, tripID uuid.UUID, kind domain.EntityKind, entityID uuid.UUID, status domain.Status) (domain.Trip, error) {
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		return t.SetStatus(kind, entityID, status)
	})
}

// PostChatMessage appends a chat entry under the actor's display name.
func (s *TripService) PostChatMessage(ctx context.Context, actor, tripID uuid.UUID, text string) (domain.Trip, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Trip{}, fmt.Errorf("%w: message text is required", domain.ErrValidation)
	}

	name := "Unknown"
	if user, err := s.local.FindUserByID(ctx, actor); err == nil {
		name = user.Name
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		t.AddChatMessage(name, text)
		return nil
	})
}

// SetCoverImage stores a cover image (data URI or URL) after size validation.
// An empty value clears the cover.
func (s *TripService) SetCoverImage(ctx context.Context, actor, tripID uuid.UUID, cover string) (domain.Trip, error) {
	if len(cover) > MaxCoverImageBytes {
		return domain.Trip{}, fmt.Errorf("%w: cover image exceeds %d bytes", domain.ErrValidation, MaxCoverImageBytes)
	}
	return s.mutate(ctx, actor, tripID, func(t *domain.Trip) error {
		t.CoverImage = cover
		return nil
	})
}

// ---- internals -------------------------------------------------------------

// load reads a trip cache-first, falling back to the remote and mirroring a
// remote hit into the cache.
func (s *TripService) load(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.local.FindTrip(ctx, tripID)
	if err == nil {
		return trip, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, err
	}

	trip, err = s.remote.FindTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, domain.ErrRemoteUnavailable) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	if putErr := s.local.PutTrip(ctx, trip); putErr != nil {
		s.log.Warn("trip cache fill failed", "trip_id", trip.ID, "error", putErr)
	}
	return trip, nil
}

// mutate is the single write path for entity-level operations: load, check
// membership, apply, persist.
func (s *TripService) mutate(ctx context.Context, actor, tripID uuid.UUID, fn func(*domain.Trip) error) (domain.Trip, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.mutate: %w", err)
	}
	if !trip.HasUser(actor) {
		return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}
	if err := fn(&trip); err != nil {
		return domain.Trip{}, err
	}
	if err := s.persist(ctx, actor, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.mutate: %w", err)
	}
	return trip, nil
}

// persist refreshes derived state, advances updatedAt, dual-writes, and
// refreshes the actor's editing session. The cache write must succeed; the
// remote write is best-effort and silent on unavailability.
func (s *TripService) persist(ctx context.Context, actor uuid.UUID, trip *domain.Trip) error {
	trip.RefreshProgress()
	trip.Touch()

	if err := s.local.PutTrip(ctx, *trip); err != nil {
		return err
	}
	if err := s.remote.UpsertTrip(ctx, *trip); err != nil {
		if !errors.Is(err, domain.ErrRemoteUnavailable) {
			s.log.Warn("remote trip write failed", "trip_id", trip.ID, "error", err)
		}
	}

	if sess, ok := s.sessions.Get(actor); ok {
		sess.SetActiveTrip(*trip)
	}
	return nil
}
