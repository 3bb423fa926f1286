package http

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"vidtube/domain"
	"vidtube/errs"
)

// registerVideoRoutes is a helper for registering all Video routes.
func (s *Server) registerVideoRoutes(r *mux.Router) {
	r.HandleFunc("/videos", s.handleGetVideos).Methods("GET")
	r.HandleFunc("/videos", s.requireAuth(s.handlePublishVideo)).Methods("POST")
	r.HandleFunc("/videos/{id:[0-9]+}", s.handleGetVideo).Methods("GET")
	r.HandleFunc("/videos/{id:[0-9]+}", s.requireAuth(s.handleUpdateVideo)).Methods("PATCH")
	r.HandleFunc("/videos/{id:[0-9]+}", s.requireAuth(s.handleDeleteVideo)).Methods("DELETE")
	r.HandleFunc("/videos/{id:[0-9]+}/publish", s.requireAuth(s.handleTogglePublish)).Methods("PATCH")
}

// videoPage is the paginated video feed shape.
type videoPage struct {
	Videos      []domain.Video `json:"videos"`
	TotalVideos int            `json:"totalVideos"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	TotalPages  int            `json:"totalPages"`
}

// handleGetVideos handles the route "GET /api/videos".
// It matches videos against the query parameters (page, limit, query,
// sortBy, sortDir, userId) and returns one page of the feed. Pagination is
// snapshot-less: writes racing the request can shift page boundaries.
func (s *Server) handleGetVideos(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.VideoFilter{
		Query:    r.URL.Query().Get("query"),
		SortBy:   r.URL.Query().Get("sortBy"),
		SortDesc: r.URL.Query().Get("sortDir") != "asc",
		Page:     page,
		Limit:    limit,
	}
	if ownerID := queryInt(r, "userId", 0); ownerID > 0 {
		filter.OwnerID = &ownerID
	}

	videos, total, err := s.vs.Find(r.Context(), filter)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, videoPage{
		Videos:      videos,
		TotalVideos: total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages(total, filter.Limit),
	}, "Videos fetched successfully.")
}

// handlePublishVideo handles the route "POST /api/videos".
// It reads title, description and the two media files from the multipart
// body, pushes the files to the media host, and creates the video record.
func (s *Server) handlePublishVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(domain.MaxVideoSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid multipart body."))
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Title and description are required."))
		return
	}

	videoResult, err := s.uploadFormFile(r, "videoFile", domain.MediaKindVideo)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	thumbResult, err := s.uploadFormFile(r, "thumbnail", domain.MediaKindImage)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)
	video := domain.Video{
		OwnerID:     user.ID,
		Title:       title,
		Description: description,
		VideoFile:   videoResult.SecureURL,
		Thumbnail:   thumbResult.SecureURL,
		Duration:    videoResult.Duration,
		IsPublished: true,
	}
	if err := s.vs.Create(r.Context(), &video); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, video, "Video published successfully.")
}

// handleGetVideo handles the route "GET /api/videos/:id".
// It returns the video with its owner profile and counts the view.
func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	video, err := s.vs.View(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, video, "Video fetched successfully.")
}

// handleUpdateVideo handles the route "PATCH /api/videos/:id".
// A json body updates title and description. A multipart body may also carry
// replacement videoFile / thumbnail files, which get re-uploaded first.
// Only the owner may update.
func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)

	var upd domain.VideoUpdate
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// Ownership must be settled before any replacement file
		// reaches the media host.
		existing, err := s.vs.ByID(r.Context(), id)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if existing.OwnerID != user.ID {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this video."))
			return
		}
		upd, err = s.parseMultipartVideoUpdate(r)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	} else {
		upd, err = parseJSONVideoUpdate(r)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	video, err := s.vs.Update(r.Context(), id, user.ID, upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, video, "Video details updated successfully.")
}

// handleDeleteVideo handles the route "DELETE /api/videos/:id".
// Only the owner may delete. Unknown ids report not-found.
func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)
	if err := s.vs.Delete(r.Context(), id, user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, struct{}{}, "Video deleted successfully.")
}

// handleTogglePublish handles the route "PATCH /api/videos/:id/publish".
// It flips the publish flag. Only the owner may toggle.
func (s *Server) handleTogglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r)
	video, err := s.vs.TogglePublish(r.Context(), id, user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, video, "Video publish status toggled successfully.")
}

// parseJSONVideoUpdate reads title / description changes from a json body.
func parseJSONVideoUpdate(r *http.Request) (domain.VideoUpdate, error) {
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.VideoUpdate{}, errs.Errorf(errs.EINVALID, "Invalid json body.")
	}
	return domain.VideoUpdate{
		Title:       body.Title,
		Description: body.Description,
	}, nil
}

// parseMultipartVideoUpdate reads field changes plus optional replacement
// media files from a multipart body, uploading any files it finds.
func (s *Server) parseMultipartVideoUpdate(r *http.Request) (domain.VideoUpdate, error) {
	var upd domain.VideoUpdate
	if err := r.ParseMultipartForm(domain.MaxVideoSize); err != nil {
		return upd, errs.Errorf(errs.EINVALID, "Invalid multipart body.")
	}

	if title := r.FormValue("title"); title != "" {
		upd.Title = &title
	}
	if description := r.FormValue("description"); description != "" {
		upd.Description = &description
	}

	if hasFormFile(r, "videoFile") {
		result, err := s.uploadFormFile(r, "videoFile", domain.MediaKindVideo)
		if err != nil {
			return upd, err
		}
		upd.VideoFile = &result.SecureURL
		upd.Duration = &result.Duration
	}
	if hasFormFile(r, "thumbnail") {
		result, err := s.uploadFormFile(r, "thumbnail", domain.MediaKindImage)
		if err != nil {
			return upd, err
		}
		upd.Thumbnail = &result.SecureURL
	}
	return upd, nil
}

// hasFormFile reports whether the multipart form carries the named file.
func hasFormFile(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}

// uploadFormFile pulls a single named file out of the multipart form and
// stores it with the media host.
func (s *Server) uploadFormFile(r *http.Request, field, kind string) (*domain.UploadResult, error) {
	if !hasFormFile(r, field) {
		return nil, errs.Errorf(errs.EINVALID, "Media file %q is missing.", field)
	}
	fileHeader := r.MultipartForm.File[field][0]
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer closeFile(file)

	return s.ms.Upload(r.Context(), &domain.Upload{
		File:     file,
		Filename: fileHeader.Filename,
		Kind:     kind,
	})
}

func closeFile(file multipart.File) {
	_ = file.Close()
}
