package handler

import (
	"net/http"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
)

type createTripRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// ListTrips handles GET /trips. The list is merged against the remote store
// before it is returned, so it is at most one poll interval stale.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	trips, err := s.trips.GetTripsForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trips)
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req createTripRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.CreateTrip(r.Context(), userID, req.Name, req.Currency)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, trip)
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	trip, err := s.trips.GetTrip(r.Context(), userID, tripID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

// SaveTrip handles PUT /trips/{tripID}: a whole-document replace.
func (s *Server) SaveTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var trip domain.Trip
	if err := decodeBody(r, &trip); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	trip.ID = tripID

	saved, err := s.trips.SaveTrip(r.Context(), userID, trip)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	if err := s.trips.DeleteTrip(r.Context(), userID, tripID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatRequest struct {
	Text string `json:"text"`
}

// PostChat handles POST /trips/{tripID}/chat.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.PostChatMessage(r.Context(), userID, tripID, req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

type coverRequest struct {
	CoverImage string `json:"coverImage"`
}

// SetCover handles PUT /trips/{tripID}/cover. An empty coverImage clears it.
func (s *Server) SetCover(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}

	var req coverRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.SetCoverImage(r.Context(), userID, tripID, req.CoverImage)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

// SetEntityStatus handles PUT /trips/{tripID}/entities/{kind}/{entityID}/status.
func (s *Server) SetEntityStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	tripID, err := pathUUID(r, "tripID")
	if err != nil {
		respondBadRequest(w, "invalid trip id")
		return
	}
	entityID, err := pathUUID(r, "entityID")
	if err != nil {
		respondBadRequest(w, "invalid entity id")
		return
	}
	kind := domain.EntityKind(pathParam(r, "kind"))

	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	trip, err := s.trips.SetEntityStatus(r.Context(), userID, tripID, kind, entityID, req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}
