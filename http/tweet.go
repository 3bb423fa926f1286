package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerTweetRoutes is a helper for registering all Tweet routes.
func (s *Server) registerTweetRoutes(r *mux.Router) {
	r.HandleFunc("/tweets", s.requireAuth(s.handleCreateTweet)).Methods("POST")
	r.HandleFunc("/tweets/user/{id:[0-9]+}", s.handleGetUserTweets).Methods("GET")
	r.HandleFunc("/tweets/{id:[0-9]+}", s.requireAuth(s.handleUpdateTweet)).Methods("PATCH")
	r.HandleFunc("/tweets/{id:[0-9]+}", s.requireAuth(s.handleDeleteTweet)).Methods("DELETE")
}

// tweetPage is the paginated tweet feed shape.
type tweetPage struct {
	Tweets      []domain.Tweet `json:"tweets"`
	TotalTweets int            `json:"totalTweets"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	TotalPages  int            `json:"totalPages"`
}

// handleCreateTweet handles the route "POST /api/tweets".
// It creates a new tweet for the authed actor.
func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r)
	tweet := domain.Tweet{
		OwnerID: user.ID,
		Content: body.Content,
	}
	if err := s.ts.Create(r.Context(), &tweet); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, tweet, "Tweet created successfully.")
}

// handleGetUserTweets handles the route "GET /api/tweets/user/:id".
// It returns one page of the user's tweets, newest first.
func (s *Server) handleGetUserTweets(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	page, limit := pageParams(r)
	filter := domain.TweetFilter{
		OwnerID: userID,
		Page:    page,
		Limit:   limit,
	}
	tweets, total, err := s.ts.ByUser(r.Context(), filter)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, tweetPage{
		Tweets:      tweets,
		TotalTweets: total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages(total, filter.Limit),
	}, "User tweets fetched successfully.")
}

// handleUpdateTweet handles the route "PATCH /api/tweets/:id".
// It replaces the tweet content. Only the owner may update.
func (s *Server) handleUpdateTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid json body."))
		return
	}

	user := s.getUserFromContext(r)
	tweet, err := s.ts.Update(r.Context(), id, user.ID, body.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, tweet, "Tweet updated successfully.")
}

// handleDeleteTweet handles the route "DELETE /api/tweets/:id".
// Only the owner may delete. Unknown ids report not-found.
func (s *Server) handleDeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)
	if err := s.ts.Delete(r.Context(), id, user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, struct{}{}, "Tweet deleted successfully.")
}
