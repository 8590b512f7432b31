package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/handler"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
	"github.com/YulanysYula/TravelPuzzle/internal/service"
)

const testSecret = "handler-test-secret"

// mockUserServicer is a test double for handler.UserServicer.
// Set only the method fields your test needs.
type mockUserServicer struct {
	register    func(ctx context.Context, email, name, password string) (domain.User, error)
	login       func(ctx context.Context, email, password string) (domain.User, error)
	logout      func(ctx context.Context, userID uuid.UUID) error
	getUserByID func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (m *mockUserServicer) Register(ctx context.Context, email, name, password string) (domain.User, error) {
	return m.register(ctx, email, name, password)
}
func (m *mockUserServicer) Login(ctx context.Context, email, password string) (domain.User, error) {
	return m.login(ctx, email, password)
}
func (m *mockUserServicer) Logout(ctx context.Context, userID uuid.UUID) error {
	return m.logout(ctx, userID)
}
func (m *mockUserServicer) GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getUserByID(ctx, id)
}

var _ handler.UserServicer = (*mockUserServicer)(nil)

// mockTripServicer is a test double for handler.TripServicer.
type mockTripServicer struct {
	createTrip      func(ctx context.Context, creator uuid.UUID, name, currency string) (domain.Trip, error)
	getTripsForUser func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	getTrip         func(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error)
	saveTrip        func(ctx context.Context, actor uuid.UUID, trip domain.Trip) (domain.Trip, error)
	deleteTrip      func(ctx context.Context, actor, tripID uuid.UUID) error

	addPlace      func(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error)
	updatePlace   func(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error)
	deletePlace   func(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)
	movePlaceUp   func(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)
	movePlaceDown func(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)

	addActivity     func(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error)
	updateActivity  func(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error)
	deleteActivity  func(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)
	voteActivity    func(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)
	approveActivity func(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)

	addAccommodation    func(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error)
	updateAccommodation func(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error)
	deleteAccommodation func(ctx context.Context, actor, tripID, accID uuid.UUID) (domain.Trip, error)

	addTransport    func(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error)
	updateTransport func(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error)
	deleteTransport func(ctx context.Context, actor, tripID, transportID uuid.UUID) (domain.Trip, error)

	addExpense    func(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error)
	updateExpense func(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error)
	deleteExpense func(ctx context.Context, actor, tripID, expenseID uuid.UUID) (domain.Trip, error)

	setEntityStatus func(ctx context.Context, actor, tripID uuid.UUID, kind domain.EntityKind, entityID uuid.UUID, status domain.Status) (domain.Trip, error)
	postChatMessage func(ctx context.Context, actor, tripID uuid.UUID, text string) (domain.Trip, error)
	setCoverImage   func(ctx context.Context, actor, tripID uuid.UUID, cover string) (domain.Trip, error)
}

func (m *mockTripServicer) CreateTrip(ctx context.Context, creator uuid.UUID, name, currency string) (domain.Trip, error) {
	return m.createTrip(ctx, creator, name, currency)
}
func (m *mockTripServicer) GetTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.getTripsForUser(ctx, userID)
}
func (m *mockTripServicer) GetTrip(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error) {
	return m.getTrip(ctx, actor, tripID)
}
func (m *mockTripServicer) SaveTrip(ctx context.Context, actor uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	return m.saveTrip(ctx, actor, trip)
}
func (m *mockTripServicer) DeleteTrip(ctx context.Context, actor, tripID uuid.UUID) error {
	return m.deleteTrip(ctx, actor, tripID)
}
func (m *mockTripServicer) AddPlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error) {
	return m.addPlace(ctx, actor, tripID, place)
}
func (m *mockTripServicer) UpdatePlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error) {
	return m.updatePlace(ctx, actor, tripID, place)
}
func (m *mockTripServicer) DeletePlace(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return m.deletePlace(ctx, actor, tripID, placeID)
}
func (m *mockTripServicer) MovePlaceUp(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return m.movePlaceUp(ctx, actor, tripID, placeID)
}
func (m *mockTripServicer) MovePlaceDown(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error) {
	return m.movePlaceDown(ctx, actor, tripID, placeID)
}
func (m *mockTripServicer) AddActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error) {
	return m.addActivity(ctx, actor, tripID, activity)
}
func (m *mockTripServicer) UpdateActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error) {
	return m.updateActivity(ctx, actor, tripID, activity)
}
func (m *mockTripServicer) DeleteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return m.deleteActivity(ctx, actor, tripID, activityID)
}
func (m *mockTripServicer) VoteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return m.voteActivity(ctx, actor, tripID, activityID)
}
func (m *mockTripServicer) ApproveActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error) {
	return m.approveActivity(ctx, actor, tripID, activityID)
}
func (m *mockTripServicer) AddAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error) {
	return m.addAccommodation(ctx, actor, tripID, acc)
}
func (m *mockTripServicer) UpdateAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error) {
	return m.updateAccommodation(ctx, actor, tripID, acc)
}
func (m *mockTripServicer) DeleteAccommodation(ctx context.Context, actor, tripID, accID uuid.UUID) (domain.Trip, error) {
	return m.deleteAccommodation(ctx, actor, tripID, accID)
}
func (m *mockTripServicer) AddTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error) {
	return m.addTransport(ctx, actor, tripID, tr)
}
func (m *mockTripServicer) UpdateTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error) {
	return m.updateTransport(ctx, actor, tripID, tr)
}
func (m *mockTripServicer) DeleteTransport(ctx context.Context, actor, tripID, transportID uuid.UUID) (domain.Trip, error) {
	return m.deleteTransport(ctx, actor, tripID, transportID)
}
func (m *mockTripServicer) AddExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error) {
	return m.addExpense(ctx, actor, tripID, exp)
}
func (m *mockTripServicer) UpdateExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error) {
	return m.updateExpense(ctx, actor, tripID, exp)
}
func (m *mockTripServicer) DeleteExpense(ctx context.Context, actor, tripID, expenseID uuid.UUID) (domain.Trip, error) {
	return m.deleteExpense(ctx, actor, tripID, expenseID)
}
func (m *mockTripServicer) SetEntityStatus(ctx context.Context, actor, tripID uuid.UUID, kind domain.EntityKind, entityID uuid.UUID, status domain.Status) (domain.Trip, error) {
	return m.setEntityStatus(ctx, actor, tripID, kind, entityID, status)
}
func (m *mockTripServicer) PostChatMessage(ctx context.Context, actor, tripID uuid.UUID, text string) (domain.Trip, error) {
	return m.postChatMessage(ctx, actor, tripID, text)
}
func (m *mockTripServicer) SetCoverImage(ctx context.Context, actor, tripID uuid.UUID, cover string) (domain.Trip, error) {
	return m.setCoverImage(ctx, actor, tripID, cover)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockShareServicer is a test double for handler.ShareServicer.
type mockShareServicer struct {
	issueToken   func(ctx context.Context, actor, tripID uuid.UUID) (service.ShareLink, error)
	resolveToken func(ctx context.Context, token string) (domain.Trip, error)
	joinTrip     func(ctx context.Context, userID uuid.UUID, token string) (domain.Trip, error)
}

func (m *mockShareServicer) IssueToken(ctx context.Context, actor, tripID uuid.UUID) (service.ShareLink, error) {
	return m.issueToken(ctx, actor, tripID)
}
func (m *mockShareServicer) ResolveToken(ctx context.Context, token string) (domain.Trip, error) {
	return m.resolveToken(ctx, token)
}
func (m *mockShareServicer) JoinTrip(ctx context.Context, userID uuid.UUID, token string) (domain.Trip, error) {
	return m.joinTrip(ctx, userID, token)
}

var _ handler.ShareServicer = (*mockShareServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router,
// mirroring how main.go wires it in production. Nil mocks are fine for routes
// the test never touches.
func newHTTPHandler(users handler.UserServicer, trips handler.TripServicer, share handler.ShareServicer) http.Handler {
	return handler.NewServer(users, trips, share, testSecret).Routes()
}

// authedRequest builds a request carrying a valid bearer token for userID.
func authedRequest(t *testing.T, method, target string, body io.Reader, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := middleware.NewToken(testSecret, userID)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func tripFixture(owner uuid.UUID) domain.Trip {
	trip := domain.NewTrip("Summer Tour", owner, "EUR")
	return trip
}
