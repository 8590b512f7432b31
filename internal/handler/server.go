// Package handler implements the HTTP handlers for the TravelPuzzle API.
// All handlers are methods on Server; they are split into domain-specific
// files (auth.go, trip.go, entities.go, share.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
	"github.com/YulanysYula/TravelPuzzle/internal/service"
)

// UserServicer defines the account operations the handlers depend on.
// Defining the interfaces here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the stores.
type UserServicer interface {
	Register(ctx context.Context, email, name, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// TripServicer defines the trip operations the handlers depend on.
type TripServicer interface {
	CreateTrip(ctx context.Context, creator uuid.UUID, name, currency string) (domain.Trip, error)
	GetTripsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	GetTrip(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error)
	SaveTrip(ctx context.Context, actor uuid.UUID, trip domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, actor, tripID uuid.UUID) error

	AddPlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error)
	UpdatePlace(ctx context.Context, actor, tripID uuid.UUID, place domain.Place) (domain.Trip, error)
	DeletePlace(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)
	MovePlaceUp(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)
	MovePlaceDown(ctx context.Context, actor, tripID, placeID uuid.UUID) (domain.Trip, error)

	AddActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error)
	UpdateActivity(ctx context.Context, actor, tripID uuid.UUID, activity domain.Activity) (domain.Trip, error)
	DeleteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)
	VoteActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)
	ApproveActivity(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Trip, error)

	AddAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error)
	UpdateAccommodation(ctx context.Context, actor, tripID uuid.UUID, acc domain.Accommodation) (domain.Trip, error)
	DeleteAccommodation(ctx context.Context, actor, tripID, accID uuid.UUID) (domain.Trip, error)

	AddTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error)
	UpdateTransport(ctx context.Context, actor, tripID uuid.UUID, tr domain.Transport) (domain.Trip, error)
	DeleteTransport(ctx context.Context, actor, tripID, transportID uuid.UUID) (domain.Trip, error)

	AddExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error)
	UpdateExpense(ctx context.Context, actor, tripID uuid.UUID, exp domain.Expense) (domain.Trip, error)
	DeleteExpense(ctx context.Context, actor, tripID, expenseID uuid.UUID) (domain.Trip, error)

	SetEntityStatus(ctx context.Context, actor, tripID uuid.UUID, kind domain.EntityKind, entityID uuid.UUID, status domain.Status) (domain.Trip, error)
	PostChatMessage(ctx context.Context, actor, tripID uuid.UUID, text string) (domain.Trip, error)
	SetCoverImage(ctx context.Context, actor, tripID uuid.UUID, cover string) (domain.Trip, error)
}

// ShareServicer defines the share-link operations the handlers depend on.
type ShareServicer interface {
	IssueToken(ctx context.Context, actor, tripID uuid.UUID) (service.ShareLink, error)
	ResolveToken(ctx context.Context, token string) (domain.Trip, error)
	JoinTrip(ctx context.Context, userID uuid.UUID, token string) (domain.Trip, error)
}

// Server holds the handler dependencies. Methods are in domain-specific
// files but all operate on this struct.
type Server struct {
	users     UserServicer
	trips     TripServicer
	share     ShareServicer
	jwtSecret string
}

// NewServer constructs the Server with all its dependencies.
func NewServer(users UserServicer, trips TripServicer, share ShareServicer, jwtSecret string) *Server {
	return &Server{users: users, trips: trips, share: share, jwtSecret: jwtSecret}
}

// Routes mounts every endpoint on a fresh router. Auth endpoints and share
// resolution are public; everything else sits behind the bearer-token
// authenticator.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Post("/auth/register", s.Register)
	r.Post("/auth/login", s.Login)
	r.Get("/share/{token}", s.ResolveShare)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator(s.jwtSecret))

		r.Post("/auth/logout", s.Logout)
		r.Get("/auth/me", s.Me)
		r.Post("/share/{token}/join", s.JoinShare)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.SaveTrip)
				r.Delete("/", s.DeleteTrip)

				r.Post("/share", s.IssueShare)
				r.Post("/chat", s.PostChat)
				r.Put("/cover", s.SetCover)
				r.Put("/entities/{kind}/{entityID}/status", s.SetEntityStatus)

				r.Route("/places", func(r chi.Router) {
					r.Post("/", s.AddPlace)
					r.Put("/{placeID}", s.UpdatePlace)
					r.Delete("/{placeID}", s.DeletePlace)
					r.Post("/{placeID}/move-up", s.MovePlaceUp)
					r.Post("/{placeID}/move-down", s.MovePlaceDown)
				})

				r.Route("/activities", func(r chi.Router) {
					r.Post("/", s.AddActivity)
					r.Put("/{activityID}", s.UpdateActivity)
					r.Delete("/{activityID}", s.DeleteActivity)
					r.Post("/{activityID}/vote", s.VoteActivity)
					r.Post("/{activityID}/approve", s.ApproveActivity)
				})

				r.Route("/accommodations", func(r chi.Router) {
					r.Post("/", s.AddAccommodation)
					r.Put("/{accommodationID}", s.UpdateAccommodation)
					r.Delete("/{accommodationID}", s.DeleteAccommodation)
				})

				r.Route("/transports", func(r chi.Router) {
					r.Post("/", s.AddTransport)
					r.Put("/{transportID}", s.UpdateTransport)
					r.Delete("/{transportID}", s.DeleteTransport)
				})

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", s.AddExpense)
					r.Put("/{expenseID}", s.UpdateExpense)
					r.Delete("/{expenseID}", s.DeleteExpense)
				})
			})
		})
	})

	return r
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
