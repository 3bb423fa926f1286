package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"vidtube/auth"
	"vidtube/domain"
	"vidtube/errs"
)

// Server provides the http functionality of the app: routing, request
// handling and middleware. It authenticates the actor from the bearer token
// before handing things over to one of the domain services.
type Server struct {
	router *mux.Router
	tokens *auth.TokenManager

	us domain.UserService
	vs domain.VideoService
	cs domain.CommentService
	ts domain.TweetService
	ls domain.LikeService
	ms domain.MediaService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the services passed in.
func NewServer(
	tokens *auth.TokenManager,
	us domain.UserService,
	vs domain.VideoService,
	cs domain.CommentService,
	ts domain.TweetService,
	ls domain.LikeService,
	ms domain.MediaService,
) *Server {
	s := &Server{
		router: mux.NewRouter(),
		tokens: tokens,
		us:     us,
		vs:     vs,
		cs:     cs,
		ts:     ts,
		ls:     ls,
		ms:     ms,
	}

	api := s.router.PathPrefix("/api").Subrouter()
	s.registerAuthRoutes(api)
	s.registerUserRoutes(api)
	s.registerVideoRoutes(api)
	s.registerCommentRoutes(api)
	s.registerTweetRoutes(api)
	s.registerLikeRoutes(api)

	s.router.Use(setContentTypeJSON, s.checkUser)
	return s
}

// ServeHTTP lets the server act as an http.Handler, which also makes it
// directly usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) error {
	return http.ListenAndServe(":"+strconv.Itoa(port), s.router)
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The checkUser middleware resolves the bearer token into a user and stores
// it in the request context. Requests without a usable token stay anonymous;
// requireAuth decides per route whether that is acceptable.
func (s *Server) checkUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
	})
}

// requireAuth wraps a handler that must only run for authenticated actors.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Authentication required."))
			return
		}
		next(w, r)
	}
}

// getUserFromContext returns the authenticated actor of the request.
func (s *Server) getUserFromContext(r *http.Request) *domain.User {
	return auth.GetUser(r.Context())
}
