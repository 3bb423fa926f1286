package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerLikeRoutes is a helper for registering all Like routes.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	r.HandleFunc("/likes/video/{id:[0-9]+}", s.requireAuth(s.handleToggleLike(domain.SubjectVideo))).Methods("POST")
	r.HandleFunc("/likes/comment/{id:[0-9]+}", s.requireAuth(s.handleToggleLike(domain.SubjectComment))).Methods("POST")
	r.HandleFunc("/likes/tweet/{id:[0-9]+}", s.requireAuth(s.handleToggleLike(domain.SubjectTweet))).Methods("POST")
	r.HandleFunc("/likes/videos", s.requireAuth(s.handleGetLikedVideos)).Methods("GET")
}

// likedVideosPage is the paginated liked-videos feed shape.
type likedVideosPage struct {
	Likes      []domain.Like `json:"likes"`
	TotalLikes int           `json:"totalLikes"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// handleToggleLike handles the routes "POST /api/likes/{video,comment,tweet}/:id".
// It flips the liked state for the authed actor and reports the result.
func (s *Server) handleToggleLike(subject domain.SubjectType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID, err := pathID(mux.Vars(r), "id")
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}

		user := s.getUserFromContext(r)
		isLiked, err := s.ls.Toggle(r.Context(), subject, subjectID, user.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}

		message := "Successfully unliked the " + string(subject) + "."
		if isLiked {
			message = "Successfully liked the " + string(subject) + "."
		}
		respond(w, r, http.StatusOK, map[string]bool{"isLiked": isLiked}, message)
	}
}

// handleGetLikedVideos handles the route "GET /api/likes/videos".
// It returns one page of the authed actor's liked videos with the video and
// its owner profile joined in.
func (s *Server) handleGetLikedVideos(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r)
	page, limit := pageParams(r)

	likes, total, err := s.ls.LikedVideos(r.Context(), user.ID, page, limit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, likedVideosPage{
		Likes:      likes,
		TotalLikes: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, "Liked videos fetched successfully.")
}
