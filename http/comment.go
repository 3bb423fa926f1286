package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerCommentRoutes is a helper for registering all Comment routes.
func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/videos/{id:[0-9]+}/comments", s.handleGetVideoComments).Methods("GET")
	r.HandleFunc("/videos/{id:[0-9]+}/comments", s.requireAuth(s.handleAddComment)).Methods("POST")
	r.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleUpdateComment)).Methods("PATCH")
	r.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleDeleteComment)).Methods("DELETE")
}

// commentPage is the paginated comment feed shape.
type commentPage struct {
	Comments      []domain.Comment `json:"comments"`
	TotalComments int              `json:"totalComments"`
	Page          int              `json:"page"`
	Limit         int              `json:"limit"`
	TotalPages    int              `json:"totalPages"`
}

// handleGetVideoComments handles the route "GET /api/videos/:id/comments".
// It returns one page of the video's comments, owner profiles joined in.
func (s *Server) handleGetVideoComments(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	page, limit := pageParams(r)
	filter := domain.CommentFilter{
		VideoID: videoID,
		Page:    page,
		Limit:   limit,
	}
	comments, total, err := s.cs.ByVideo(r.Context(), filter)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, commentPage{
		Comments:      comments,
		TotalComments: total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    totalPages(total, filter.Limit),
	}, "Video comments fetched successfully.")
}

// handleAddComment handles the route "POST /api/videos/:id/comments".
// It creates a new comment on the video for the authed actor.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathID(mux.Vars(r), "id")
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
	comment := domain.Comment{
		OwnerID: user.ID,
		VideoID: videoID,
		Content: body.Content,
	}
	if err := s.cs.Create(r.Context(), &comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, comment, "Comment created successfully.")
}

// handleUpdateComment handles the route "PATCH /api/comments/:id".
// It replaces the comment content. Only the owner may update.
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
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
	comment, err := s.cs.Update(r.Context(), id, user.ID, body.Content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, comment, "Comment updated successfully.")
}

// handleDeleteComment handles the route "DELETE /api/comments/:id".
// Only the owner may delete. Unknown ids report not-found.
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)
	if err := s.cs.Delete(r.Context(), id, user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, struct{}{}, "Comment deleted successfully.")
}
