package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerAuthRoutes is a helper for registering all auth routes.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
}

// handleRegister handles the route "POST /api/register".
// It creates a new user and returns it together with a bearer token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	if err := s.us.Create(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, map[string]interface{}{
		"user":  user,
		"token": token,
	}, "User registered successfully.")
}

// handleLogin handles the route "POST /api/login".
// It checks the credentials and returns the user with a fresh bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}
	if creds.Email == "" || creds.Password == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Email and password are required."))
		return
	}

	user, err := s.us.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	}, "Logged in successfully.")
}
