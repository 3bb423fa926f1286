package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerUserRoutes is a helper for registering all User routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods("GET")
}

// handleGetUser handles the route "GET /api/users/:id".
// It returns the public profile projection of the requested user.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	profile := domain.Profile{
		ID:       user.ID,
		FullName: user.FullName,
		Avatar:   user.Avatar,
		Username: user.Username,
	}
	respond(w, r, http.StatusOK, profile, "User fetched successfully.")
}
