package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/service"
	"github.com/YulanysYula/TravelPuzzle/internal/session"
)

type tripFixture struct {
	svc      *service.TripService
	local    *fakeLocal
	remote   *mockRemote
	sessions *session.Registry
	owner    uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID
	trip     domain.Trip
}

func newTripFixture(t *testing.T, policy domain.ApprovalPolicy) *tripFixture {
	t.Helper()

	f := &tripFixture{
		local:    newFakeLocal(),
		remote:   &mockRemote{},
		sessions: session.NewRegistry(),
		owner:    uuid.New(),
		member:   uuid.New(),
		outsider: uuid.New(),
	}
	f.svc = service.NewTripService(f.local, f.remote, &mockSyncer{}, f.sessions, policy, "EUR", nil)

	trip := domain.NewTrip("Portugal", f.owner, "EUR")
	trip.AddUser(f.member)
	require.NoError(t, f.local.PutTrip(context.Background(), trip))
	f.trip = trip
	return f
}

func TestTripService_CreateTrip(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.CreateTrip(context.Background(), f.owner, "  Japan ", "")

	require.NoError(t, err)
	assert.Equal(t, "Japan", trip.Name)
	assert.Equal(t, "EUR", trip.Currency, "default currency applies when none given")
	assert.True(t, trip.HasUser(f.owner))
	assert.Equal(t, 0, trip.Progress)

	cached, err := f.local.FindTrip(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.UpdatedAt, cached.UpdatedAt)

	_, err = f.svc.CreateTrip(context.Background(), f.owner, "   ", "EUR")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// With the remote permanently down every operation must still succeed against
// the cache alone, and no remote error may leak to the caller.
func TestTripService_OfflineOperation(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)
	syncer := &mockSyncer{
		syncUserFn: func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
			return f.local.ListTripsForUser(ctx, userID)
		},
	}
	f.svc = service.NewTripService(f.local, f.remote, syncer, f.sessions, domain.ApprovalIndependent, "EUR", nil)

	trip, err := f.svc.AddPlace(context.Background(), f.owner, f.trip.ID, domain.Place{Name: "Lisbon"})
	require.NoError(t, err)
	require.Len(t, trip.Places, 1)

	trips, err := f.svc.GetTripsForUser(context.Background(), f.owner)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Lisbon", trips[0].Places[0].Name)
}

func TestTripService_SaveTrip(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	edited := f.trip
	edited.Places = []domain.Place{{ID: uuid.New(), Name: "Porto", Order: 1, Status: domain.StatusNew}}
	before := edited.UpdatedAt

	saved, err := f.svc.SaveTrip(context.Background(), f.member, edited)

	require.NoError(t, err)
	assert.True(t, saved.UpdatedAt.After(before), "save advances updatedAt")
	assert.Equal(t, 20, saved.Progress, "progress recomputed on save")

	_, err = f.svc.SaveTrip(context.Background(), f.outsider, edited)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Membership for a wholesale save is decided by the stored document. A
// submitted document claiming different members must not grant access, and
// the creator can be neither reassigned nor dropped from the member list.
func TestTripService_SaveTrip_ForgedDocument(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	forged := f.trip
	forged.Users = []uuid.UUID{f.outsider}
	forged.CreatedBy = f.outsider

	_, err := f.svc.SaveTrip(context.Background(), f.outsider, forged)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	after, err := f.local.FindTrip(context.Background(), f.trip.ID)
	require.NoError(t, err)
	assert.True(t, after.HasUser(f.owner), "stored membership untouched")
	assert.Equal(t, f.owner, after.CreatedBy)

	// A legitimate member cannot evict the creator either: a save that omits
	// the creator keeps them as both creator and member.
	edited := f.trip
	edited.Users = []uuid.UUID{f.member}
	edited.CreatedBy = f.member

	saved, err := f.svc.SaveTrip(context.Background(), f.member, edited)
	require.NoError(t, err)
	assert.Equal(t, f.owner, saved.CreatedBy, "creator identity survives the replace")
	assert.True(t, saved.HasUser(f.owner), "creator stays a member")
	assert.True(t, saved.HasUser(f.member))
}

func TestTripService_GetTrip(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.GetTrip(context.Background(), f.member, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, f.trip.ID, trip.ID)

	_, err = f.svc.GetTrip(context.Background(), f.outsider, f.trip.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetTrip(context.Background(), f.member, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// A trip present only remotely (joined on another device) is fetched and
// cached on first access.
func TestTripService_GetTrip_RemoteFallback(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	remoteTrip := domain.NewTrip("Iceland", f.owner, "EUR")
	f.remote.findTripFn = func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
		if id == remoteTrip.ID {
			return remoteTrip, nil
		}
		return domain.Trip{}, domain.ErrNotFound
	}

	trip, err := f.svc.GetTrip(context.Background(), f.owner, remoteTrip.ID)
	require.NoError(t, err)
	assert.Equal(t, remoteTrip.ID, trip.ID)

	cached, err := f.local.FindTrip(context.Background(), remoteTrip.ID)
	require.NoError(t, err)
	assert.Equal(t, remoteTrip.ID, cached.ID, "remote hit fills the cache")
}

func TestTripService_DeleteTrip(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	sess := f.sessions.Start(f.owner)
	sess.SetActiveTrip(f.trip)

	require.NoError(t, f.svc.DeleteTrip(context.Background(), f.owner, f.trip.ID))

	_, err := f.local.FindTrip(context.Background(), f.trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, active := sess.ActiveTrip()
	assert.False(t, active, "deleting the active trip clears the editing context")

	err = f.svc.DeleteTrip(context.Background(), f.outsider, f.trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "already gone")
}

func TestTripService_AddPlace_Ordering(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddPlace(context.Background(), f.owner, f.trip.ID, domain.Place{Name: "Lisbon"})
	require.NoError(t, err)
	trip, err = f.svc.AddPlace(context.Background(), f.owner, trip.ID, domain.Place{Name: "Porto"})
	require.NoError(t, err)

	require.Len(t, trip.Places, 2)
	assert.Equal(t, 1, trip.Places[0].Order)
	assert.Equal(t, 2, trip.Places[1].Order)
	assert.Equal(t, domain.StatusNew, trip.Places[0].Status)
	assert.Equal(t, "EUR", trip.Places[0].Currency, "place inherits the trip currency")

	_, err = f.svc.AddPlace(context.Background(), f.outsider, trip.ID, domain.Place{Name: "Faro"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_DeletePlace_Renumbers(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	var trip domain.Trip
	var err error
	for _, name := range []string{"A", "B", "C"} {
		trip, err = f.svc.AddPlace(context.Background(), f.owner, f.trip.ID, domain.Place{Name: name})
		require.NoError(t, err)
	}

	trip, err = f.svc.DeletePlace(context.Background(), f.owner, trip.ID, trip.Places[1].ID)
	require.NoError(t, err)

	require.Len(t, trip.Places, 2)
	assert.Equal(t, 1, trip.Places[0].Order)
	assert.Equal(t, 2, trip.Places[1].Order, "ranks stay dense after a delete")
	assert.Equal(t, "C", trip.Places[1].Name)
}

func TestTripService_MovePlace(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	var trip domain.Trip
	var err error
	for _, name := range []string{"A", "B"} {
		trip, err = f.svc.AddPlace(context.Background(), f.owner, f.trip.ID, domain.Place{Name: name})
		require.NoError(t, err)
	}
	second := trip.Places[1].ID

	trip, err = f.svc.MovePlaceUp(context.Background(), f.owner, trip.ID, second)
	require.NoError(t, err)
	assert.Equal(t, 1, findPlace(t, trip, second).Order)

	_, err = f.svc.MovePlaceUp(context.Background(), f.owner, trip.ID, second)
	assert.ErrorIs(t, err, domain.ErrValidation, "already first")
}

func TestTripService_ActivityLifecycle(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddActivity(context.Background(), f.member, f.trip.ID, domain.Activity{Name: "Surfing", Day: 2})
	require.NoError(t, err)
	require.Len(t, trip.Activities, 1)
	act := trip.Activities[0]
	assert.Equal(t, f.member, act.CreatedBy)
	assert.False(t, act.Approved)
	assert.Empty(t, act.Votes)

	trip, err = f.svc.VoteActivity(context.Background(), f.owner, trip.ID, act.ID)
	require.NoError(t, err)
	assert.Contains(t, trip.Activities[0].Votes, f.owner)

	trip, err = f.svc.ApproveActivity(context.Background(), f.owner, trip.ID, act.ID)
	require.NoError(t, err)
	assert.True(t, trip.Activities[0].Approved)
	assert.Equal(t, domain.StatusApproved, trip.Activities[0].Status)

	_, err = f.svc.VoteActivity(context.Background(), f.member, trip.ID, act.ID)
	assert.ErrorIs(t, err, domain.ErrValidation, "approved activities are frozen to votes")

	trip, err = f.svc.DeleteActivity(context.Background(), f.member, trip.ID, act.ID)
	require.NoError(t, err)
	assert.Empty(t, trip.Activities)
}

func TestTripService_ApproveActivity_CreatorOnly(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddActivity(context.Background(), f.member, f.trip.ID, domain.Activity{Name: "Surfing", Day: 1})
	require.NoError(t, err)

	_, err = f.svc.ApproveActivity(context.Background(), f.member, trip.ID, trip.Activities[0].ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_ApproveActivity_ExclusivePolicy(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalExclusive)

	trip, err := f.svc.AddActivity(context.Background(), f.owner, f.trip.ID, domain.Activity{Name: "Surfing", Day: 1})
	require.NoError(t, err)
	first := trip.Activities[0].ID
	trip, err = f.svc.AddActivity(context.Background(), f.owner, trip.ID, domain.Activity{Name: "Hiking", Day: 1})
	require.NoError(t, err)
	second := trip.Activities[1].ID

	trip, err = f.svc.ApproveActivity(context.Background(), f.owner, trip.ID, first)
	require.NoError(t, err)
	trip, err = f.svc.ApproveActivity(context.Background(), f.owner, trip.ID, second)
	require.NoError(t, err)

	assert.False(t, findActivity(t, trip, first).Approved, "exclusive policy demotes the previous pick")
	assert.Equal(t, domain.StatusPossible, findActivity(t, trip, first).Status)
	assert.True(t, findActivity(t, trip, second).Approved)
}

func TestTripService_Expenses(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddExpense(context.Background(), f.owner, f.trip.ID, domain.Expense{
		Description: "Rental car",
		Amount:      120,
	})
	require.NoError(t, err)
	require.Len(t, trip.Expenses, 1)
	exp := trip.Expenses[0]
	assert.Equal(t, f.owner, exp.PaidBy, "payer defaults to the actor")
	assert.ElementsMatch(t, trip.Users, exp.SharedBy, "empty sharedBy defaults to all members")

	_, err = f.svc.AddExpense(context.Background(), f.owner, trip.ID, domain.Expense{Description: "Bad", Amount: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AddExpense(context.Background(), f.owner, trip.ID, domain.Expense{
		Description: "Outsider pays",
		Amount:      10,
		PaidBy:      f.outsider,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "payer must be a member")

	exp.Amount = 150
	trip, err = f.svc.UpdateExpense(context.Background(), f.member, trip.ID, exp)
	require.NoError(t, err)
	assert.Equal(t, float64(150), trip.Expenses[0].Amount)

	trip, err = f.svc.DeleteExpense(context.Background(), f.member, trip.ID, exp.ID)
	require.NoError(t, err)
	assert.Empty(t, trip.Expenses)
}

// SharedBy is a set. A repeated sharer must be stored once; otherwise the
// share divisor is inflated and the group balances stop summing to zero.
func TestTripService_Expenses_DuplicateSharers(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddExpense(context.Background(), f.owner, f.trip.ID, domain.Expense{
		Description: "Dinner",
		Amount:      90,
		SharedBy:    []uuid.UUID{f.owner, f.owner, f.member},
	})
	require.NoError(t, err)
	require.Len(t, trip.Expenses, 1)
	assert.ElementsMatch(t, []uuid.UUID{f.owner, f.member}, trip.Expenses[0].SharedBy)

	var total float64
	for _, u := range trip.Users {
		total += trip.DebtOf(u)
	}
	assert.InDelta(t, 0, total, 1e-9, "group debts sum to zero")

	exp := trip.Expenses[0]
	exp.SharedBy = []uuid.UUID{f.member, f.member}
	trip, err = f.svc.UpdateExpense(context.Background(), f.member, trip.ID, exp)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.member}, trip.Expenses[0].SharedBy)
}

func TestTripService_SetEntityStatus(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.AddAccommodation(context.Background(), f.owner, f.trip.ID, domain.Accommodation{Name: "Hostel"})
	require.NoError(t, err)

	trip, err = f.svc.SetEntityStatus(context.Background(), f.owner, trip.ID,
		domain.KindAccommodation, trip.Accommodations[0].ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, trip.Accommodations[0].Status)

	_, err = f.svc.SetEntityStatus(context.Background(), f.owner, trip.ID,
		domain.KindAccommodation, trip.Accommodations[0].ID, domain.Status("maybe"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_PostChatMessage(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)
	require.NoError(t, f.local.PutUser(context.Background(), domain.User{ID: f.owner, Email: "ada@example.com", Name: "Ada"}))

	trip, err := f.svc.PostChatMessage(context.Background(), f.owner, f.trip.ID, "hello all")
	require.NoError(t, err)
	require.Len(t, trip.Chat, 1)
	assert.Equal(t, "Ada", trip.Chat[0].User, "chat entries carry the display name")
	assert.Equal(t, "hello all", trip.Chat[0].Text)

	_, err = f.svc.PostChatMessage(context.Background(), f.owner, trip.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_SetCoverImage(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)

	trip, err := f.svc.SetCoverImage(context.Background(), f.owner, f.trip.ID, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.NotEmpty(t, trip.CoverImage)

	_, err = f.svc.SetCoverImage(context.Background(), f.owner, f.trip.ID, strings.Repeat("x", service.MaxCoverImageBytes+1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	trip, err = f.svc.SetCoverImage(context.Background(), f.owner, f.trip.ID, "")
	require.NoError(t, err)
	assert.Empty(t, trip.CoverImage, "empty value clears the cover")
}

// Every successful mutation must advance updatedAt and refresh the actor's
// session copy, so the synchronizer never clobbers a fresh edit.
func TestTripService_MutationBookkeeping(t *testing.T) {
	f := newTripFixture(t, domain.ApprovalIndependent)
	sess := f.sessions.Start(f.owner)
	sess.SetActiveTrip(f.trip)

	trip, err := f.svc.AddPlace(context.Background(), f.owner, f.trip.ID, domain.Place{Name: "Lisbon"})
	require.NoError(t, err)
	assert.True(t, trip.UpdatedAt.After(f.trip.UpdatedAt))
	assert.Equal(t, 20, trip.Progress)

	active, ok := sess.ActiveTrip()
	require.True(t, ok)
	assert.Equal(t, trip.UpdatedAt, active.UpdatedAt, "session copy follows the write")
}

func findPlace(t *testing.T, trip domain.Trip, id uuid.UUID) domain.Place {
	t.Helper()
	for _, p := range trip.Places {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("place %s not found", id)
	return domain.Place{}
}

func findActivity(t *testing.T, trip domain.Trip, id uuid.UUID) domain.Activity {
	t.Helper()
	for _, a := range trip.Activities {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("activity %s not found", id)
	return domain.Activity{}
}
