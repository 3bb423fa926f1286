package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidtube/auth"
	"vidtube/domain"
	"vidtube/errs"
)

// testEnvelope mirrors the response envelope for assertions.
type testEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// newTestServer wires a server around the given fakes. Nil services are
// replaced with empty fakes so routes still register. It returns the server
// and a helper that mints a bearer token for a user id.
func newTestServer(t *testing.T, us domain.UserService, vs domain.VideoService, cs domain.CommentService, ts domain.TweetService, ls domain.LikeService) (*Server, func(int) string) {
	t.Helper()
	if us == nil {
		us = &fakeUserService{}
	}
	if vs == nil {
		vs = &fakeVideoService{}
	}
	if cs == nil {
		cs = &fakeCommentService{}
	}
	if ts == nil {
		ts = &fakeTweetService{}
	}
	if ls == nil {
		ls = &fakeLikeService{}
	}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	server := NewServer(tokens, us, vs, cs, ts, ls, &fakeMediaService{})
	bearer := func(userID int) string {
		token, err := tokens.Issue(userID)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return "Bearer " + token
	}
	return server, bearer
}

// doRequest runs a request through the full middleware chain and decodes the envelope.
func doRequest(t *testing.T, server *Server, req *http.Request) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)
	var env testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to unmarshal envelope from %q: %v", rr.Body.String(), err)
	}
	return rr, env
}

type fakeUserService struct {
	users  []*domain.User
	nextID int
}

func (f *fakeUserService) ByID(_ context.Context, id int) (*domain.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func (f *fakeUserService) Create(_ context.Context, user *domain.User) error {
	f.nextID++
	user.ID = f.nextID
	user.Password = ""
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserService) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errs.Errorf(errs.EUNAUTHORIZED, "Invalid email or password.")
}

// addUser registers a user directly, for seeding tests.
func (f *fakeUserService) addUser(id int, username string) *domain.User {
	user := &domain.User{ID: id, Username: username, Email: username + "@example.com"}
	f.users = append(f.users, user)
	if id > f.nextID {
		f.nextID = id
	}
	return user
}

type fakeVideoService struct {
	videos []*domain.Video
	nextID int
}

func (f *fakeVideoService) byID(id int) *domain.Video {
	for _, video := range f.videos {
		if video.ID == id {
			return video
		}
	}
	return nil
}

func (f *fakeVideoService) ByID(_ context.Context, id int) (*domain.Video, error) {
	if video := f.byID(id); video != nil {
		return video, nil
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
}

func (f *fakeVideoService) View(ctx context.Context, id int) (*domain.Video, error) {
	video := f.byID(id)
	if video == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
	}
	video.Views++
	return video, nil
}

func (f *fakeVideoService) Find(_ context.Context, filter domain.VideoFilter) ([]domain.Video, int, error) {
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(f.videos)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	out := make([]domain.Video, 0, end-start)
	for _, video := range f.videos[start:end] {
		out = append(out, *video)
	}
	return out, total, nil
}

func (f *fakeVideoService) Create(_ context.Context, video *domain.Video) error {
	f.nextID++
	video.ID = f.nextID
	f.videos = append(f.videos, video)
	return nil
}

func (f *fakeVideoService) Update(_ context.Context, id, actorID int, upd domain.VideoUpdate) (*domain.Video, error) {
	video := f.byID(id)
	if video == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
	}
	if video.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this video.")
	}
	if upd.Title != nil {
		video.Title = *upd.Title
	}
	if upd.Description != nil {
		video.Description = *upd.Description
	}
	return video, nil
}

func (f *fakeVideoService) Delete(_ context.Context, id, actorID int) error {
	video := f.byID(id)
	if video == nil {
		return errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
	}
	if video.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this video.")
	}
	for i, v := range f.videos {
		if v.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeVideoService) TogglePublish(_ context.Context, id, actorID int) (*domain.Video, error) {
	video := f.byID(id)
	if video == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "The video does not exist.")
	}
	if video.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to publish or unpublish this video.")
	}
	video.IsPublished = !video.IsPublished
	return video, nil
}

type fakeCommentService struct {
	comments []*domain.Comment
	nextID   int
}

func (f *fakeCommentService) byID(id int) *domain.Comment {
	for _, comment := range f.comments {
		if comment.ID == id {
			return comment
		}
	}
	return nil
}

func (f *fakeCommentService) ByVideo(_ context.Context, filter domain.CommentFilter) ([]domain.Comment, int, error) {
	var matched []domain.Comment
	for _, comment := range f.comments {
		if comment.VideoID == filter.VideoID {
			matched = append(matched, *comment)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeCommentService) Create(_ context.Context, comment *domain.Comment) error {
	f.nextID++
	comment.ID = f.nextID
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentService) Update(_ context.Context, id, actorID int, content string) (*domain.Comment, error) {
	comment := f.byID(id)
	if comment == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
	}
	if comment.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this comment.")
	}
	comment.Content = content
	return comment, nil
}

func (f *fakeCommentService) Delete(_ context.Context, id, actorID int) error {
	comment := f.byID(id)
	if comment == nil {
		return errs.Errorf(errs.ENOTFOUND, "The comment does not exist.")
	}
	if comment.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this comment.")
	}
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			break
		}
	}
	return nil
}

type fakeTweetService struct {
	tweets []*domain.Tweet
	nextID int
}

func (f *fakeTweetService) byID(id int) *domain.Tweet {
	for _, tweet := range f.tweets {
		if tweet.ID == id {
			return tweet
		}
	}
	return nil
}

func (f *fakeTweetService) ByUser(_ context.Context, filter domain.TweetFilter) ([]domain.Tweet, int, error) {
	var matched []domain.Tweet
	for _, tweet := range f.tweets {
		if tweet.OwnerID == filter.OwnerID {
			matched = append(matched, *tweet)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeTweetService) Create(_ context.Context, tweet *domain.Tweet) error {
	if tweet.Content == "" {
		return errs.Errorf(errs.EINVALID, "Tweet content must not be empty.")
	}
	f.nextID++
	tweet.ID = f.nextID
	f.tweets = append(f.tweets, tweet)
	return nil
}

func (f *fakeTweetService) Update(_ context.Context, id, actorID int, content string) (*domain.Tweet, error) {
	tweet := f.byID(id)
	if tweet == nil {
		return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
	}
	if tweet.OwnerID != actorID {
		return nil, errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to edit this tweet.")
	}
	tweet.Content = content
	return tweet, nil
}

func (f *fakeTweetService) Delete(_ context.Context, id, actorID int) error {
	tweet := f.byID(id)
	if tweet == nil {
		return errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
	}
	if tweet.OwnerID != actorID {
		return errs.Errorf(errs.EUNAUTHORIZED, "You are not allowed to delete this tweet.")
	}
	for i, tw := range f.tweets {
		if tw.ID == id {
			f.tweets = append(f.tweets[:i], f.tweets[i+1:]...)
			break
		}
	}
	return nil
}

// likeKey identifies a like by actor and subject.
type likeKey struct {
	subject   domain.SubjectType
	subjectID int
	actorID   int
}

// fakeLikeService mirrors the unique-constraint toggle contract in memory.
type fakeLikeService struct {
	subjects map[domain.SubjectType]map[int]bool
	likes    map[likeKey]bool
}

// addSubject marks a subject id as existing so toggles against it succeed.
func (f *fakeLikeService) addSubject(subject domain.SubjectType, id int) {
	if f.subjects == nil {
		f.subjects = map[domain.SubjectType]map[int]bool{}
	}
	if f.subjects[subject] == nil {
		f.subjects[subject] = map[int]bool{}
	}
	f.subjects[subject][id] = true
}

func (f *fakeLikeService) Toggle(_ context.Context, subject domain.SubjectType, subjectID, actorID int) (bool, error) {
	if !subject.Valid() || subjectID <= 0 {
		return false, errs.Errorf(errs.EINVALID, "A valid %s id is required.", subject)
	}
	if !f.subjects[subject][subjectID] {
		return false, errs.Errorf(errs.ENOTFOUND, "The liked %s does not exist.", subject)
	}
	if f.likes == nil {
		f.likes = map[likeKey]bool{}
	}
	key := likeKey{subject: subject, subjectID: subjectID, actorID: actorID}
	if f.likes[key] {
		delete(f.likes, key)
		return false, nil
	}
	f.likes[key] = true
	return true, nil
}

func (f *fakeLikeService) LikedVideos(_ context.Context, actorID, page, limit int) ([]domain.Like, int, error) {
	var likes []domain.Like
	for key := range f.likes {
		if key.actorID == actorID && key.subject == domain.SubjectVideo {
			subjectID := key.subjectID
			likes = append(likes, domain.Like{LikedBy: actorID, VideoID: &subjectID})
		}
	}
	return likes, len(likes), nil
}

// fakeMediaService pretends to store files and counts how many it was given.
type fakeMediaService struct {
	uploads int
}

func (f *fakeMediaService) Upload(_ context.Context, upload *domain.Upload) (*domain.UploadResult, error) {
	f.uploads++
	result := &domain.UploadResult{
		SecureURL: "http://media.test/vidtube/" + upload.Kind + "/file",
	}
	if upload.Kind == domain.MediaKindVideo {
		result.Duration = 12.5
	}
	return result, nil
}
