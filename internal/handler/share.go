package handler

import (
	"net/http"

	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
)

// IssueShare handles POST /trips/{tripID}/share: returns the trip's share
// link, generating a token on first call.
func (s *Server) IssueShare(w http.ResponseWriter, r *http.Request) {
	actor, tripID, ok := actorAndTrip(w, r)
	if !ok {
		return
	}

	link, err := s.share.IssueToken(r.Context(), actor, tripID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, link)
}

// ResolveShare handles GET /share/{token}. The route is public: a share link
// works before the recipient has an account. The response is a preview, not
// the full document.
func (s *Server) ResolveShare(w http.ResponseWriter, r *http.Request) {
	trip, err := s.share.ResolveToken(r.Context(), pathParam(r, "token"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":      trip.ID,
		"name":    trip.Name,
		"members": len(trip.Users),
	})
}

// JoinShare handles POST /share/{token}/join, adding the authenticated user
// to the shared trip. Joining twice is a harmless no-op.
func (s *Server) JoinShare(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	trip, err := s.share.JoinTrip(r.Context(), userID, pathParam(r, "token"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, trip)
}
