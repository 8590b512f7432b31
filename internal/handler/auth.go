package handler

import (
	"net/http"

	"github.com/YulanysYula/TravelPuzzle/internal/domain"
	"github.com/YulanysYula/TravelPuzzle/internal/middleware"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by register and login: the account plus a bearer
// token for subsequent requests. The password hash never leaves the server.
type authResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func viewOf(u domain.User) userView {
	return userView{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	s.respondAuth(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	s.respondAuth(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	if err := s.users.Logout(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me, returning the authenticated account.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	user, err := s.users.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(user))
}

func (s *Server) respondAuth(w http.ResponseWriter, status int, user domain.User) {
	token, err := middleware.NewToken(s.jwtSecret, user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, status, authResponse{User: viewOf(user), Token: token})
}
