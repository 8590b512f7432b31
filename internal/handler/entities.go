package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
)

// actorAndTrip extracts the authenticated user and the tripID path parameter.
// On a bad trip id it writes the 400 and reports false.
func actorAndTrip(w http.ResponseWriter, r *http.Request) (actor, tripID uuid.UUID, ok bool) {
	actor, _ = middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return uuid.Nil, uuid.Nil, false
	}
	return actor, tripID, true
}

// entityIDFrom extracts a sub-entity id path parameter, writing the 400 on
// failure.
func entityIDFrom(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := pathUUID(r, name)
	if err != nil {
		respondBadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// respondTrip writes the mutated trip or maps the error.
func respondTrip(w http.ResponseWriter, trip domain.Trip, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// ---- places ----------------------------------------------------------------

// AddPlace handles POST /trips/{tripID}/places.
func (s *Server) AddPlace(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	var place domain.Place
	if err := decodeBody(r, &place); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip, err := s.trips.AddPlace(r.Context(), actor, tripID, place)
	respondTrip(w, trip, err)
}

// UpdatePlace handles PUT /trips/{tripID}/places/{placeID}.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	placeID, ok := entityIDFrom(w, r, "placeID")
	if !ok {
		return
	}
	var place domain.Place
	if err := decodeBody(r, &place); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	place.ID = placeID
	trip, err := s.trips.UpdatePlace(r.Context(), actor, tripID, place)
	respondTrip(w, trip, err)
}

// DeletePlace handles DELETE /trips/{tripID}/places/{placeID}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	placeID, ok := entityIDFrom(w, r, "placeID")
	if !ok {
		return
	}
	trip, err := s.trips.DeletePlace(r.Context(), actor, tripID, placeID)
	respondTrip(w, trip, err)
}

// MovePlaceUp handles POST /trips/{tripID}/places/{placeID}/move-up.
func (s *Server) MovePlaceUp(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	placeID, ok := entityIDFrom(w, r, "placeID")
	if !ok {
		return
	}
	trip, err := s.trips.MovePlaceUp(r.Context(), actor, tripID, placeID)
	respondTrip(w, trip, err)
}

// MovePlaceDown handles POST /trips/{tripID}/places/{placeID}/move-down.
func (s *Server) MovePlaceDown(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	placeID, ok := entityIDFrom(w, r, "placeID")
	if !ok {
		return
	}
	trip, err := s.trips.MovePlaceDown(r.Context(), actor, tripID, placeID)
	respondTrip(w, trip, err)
}

// ---- activities ------------------------------------------------------------

// AddActivity handles POST /trips/{tripID}/activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	var activity domain.Activity
	if err := decodeBody(r, &activity); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip, err := s.trips.AddActivity(r.Context(), actor, tripID, activity)
	respondTrip(w, trip, err)
}

// UpdateActivity handles PUT /trips/{tripID}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	activityID, ok := entityIDFrom(w, r, "activityID")
	if !ok {
		return
	}
	var activity domain.Activity
	if err := decodeBody(r, &activity); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	activity.ID = activityID
	trip, err := s.trips.UpdateActivity(r.Context(), actor, tripID, activity)
	respondTrip(w, trip, err)
}

// DeleteActivity handles DELETE /trips/{tripID}/activities/{activityID}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	activityID, ok := entityIDFrom(w, r, "activityID")
	if !ok {
		return
	}
	trip, err := s.trips.DeleteActivity(r.Context(), actor, tripID, activityID)
	respondTrip(w, trip, err)
}

// VoteActivity handles POST /trips/{tripID}/activities/{activityID}/vote.
// Voting is a toggle: a second call withdraws the vote.
func (s *Server) VoteActivity(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	activityID, ok := entityIDFrom(w, r, "activityID")
	if !ok {
		return
	}
	trip, err := s.trips.VoteActivity(r.Context(), actor, tripID, activityID)
	respondTrip(w, trip, err)
}

// ApproveActivity handles POST /trips/{tripID}/activities/{activityID}/approve.
func (s *Server) ApproveActivity(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	activityID, ok := entityIDFrom(w, r, "activityID")
	if !ok {
		return
	}
	trip, err := s.trips.ApproveActivity(r.Context(), actor, tripID, activityID)
	respondTrip(w, trip, err)
}

// ---- accommodations --------------------------------------------------------

// AddAccommodation handles POST /trips/{tripID}/accommodations.
func (s *Server) AddAccommodation(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	var acc domain.Accommodation
	if err := decodeBody(r, &acc); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip, err := s.trips.AddAccommodation(r.Context(), actor, tripID, acc)
	respondTrip(w, trip, err)
}

// UpdateAccommodation handles PUT /trips/{tripID}/accommodations/{accommodationID}.
func (s *Server) UpdateAccommodation(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	accID, ok := entityIDFrom(w, r, "accommodationID")
	if !ok {
		return
	}
	var acc domain.Accommodation
	if err := decodeBody(r, &acc); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	acc.ID = accID
	trip, err := s.trips.UpdateAccommodation(r.Context(), actor, tripID, acc)
	respondTrip(w, trip, err)
}

// DeleteAccommodation handles DELETE /trips/{tripID}/accommodations/{accommodationID}.
func (s *Server) DeleteAccommodation(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	accID, ok := entityIDFrom(w, r, "accommodationID")
	if !ok {
		return
	}
	trip, err := s.trips.DeleteAccommodation(r.Context(), actor, tripID, accID)
	respondTrip(w, trip, err)
}

// ---- transports ------------------------------------------------------------

// AddTransport handles POST /trips/{tripID}/transports.
func (s *Server) AddTransport(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	var tr domain.Transport
	if err := decodeBody(r, &tr); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip, err := s.trips.AddTransport(r.Context(), actor, tripID, tr)
	respondTrip(w, trip, err)
}

// UpdateTransport handles PUT /trips/{tripID}/transports/{transportID}.
func (s *Server) UpdateTransport(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	transportID, ok := entityIDFrom(w, r, "transportID")
	if !ok {
		return
	}
	var tr domain.Transport
	if err := decodeBody(r, &tr); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	tr.ID = transportID
	trip, err := s.trips.UpdateTransport(r.Context(), actor, tripID, tr)
	respondTrip(w, trip, err)
}

// DeleteTransport handles DELETE /trips/{tripID}/transports/{transportID}.
func (s *Server) DeleteTransport(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	transportID, ok := entityIDFrom(w, r, "transportID")
	if !ok {
		return
	}
	trip, err := s.trips.DeleteTransport(r.Context(), actor, tripID, transportID)
	respondTrip(w, trip, err)
}

// ---- expenses --------------------------------------------------------------

// AddExpense handles POST /trips/{tripID}/expenses.
func (s *Server) AddExpense(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	var exp domain.Expense
	if err := decodeBody(r, &exp); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip, err := s.trips.AddExpense(r.Context(), actor, tripID, exp)
	respondTrip(w, trip, err)
}

// UpdateExpense handles PUT /trips/{tripID}/expenses/{expenseID}.
func (s *Server) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	expenseID, ok := entityIDFrom(w, r, "expenseID")
	if !ok {
		return
	}
	var exp domain.Expense
	if err := decodeBody(r, &exp); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	exp.ID = expenseID
	trip, err := s.trips.UpdateExpense(r.Context(), actor, tripID, exp)
	respondTrip(w, trip, err)
}

// DeleteExpense handles DELETE /trips/{tripID}/expenses/{expenseID}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}
	expenseID, ok := entityIDFrom(w, r, "expenseID")
	if !ok {
		return
	}
	trip, err := s.trips.DeleteExpense(r.Context(), actor, tripID, expenseID)
	respondTrip(w, trip, err)
}
