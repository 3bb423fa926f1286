package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidtube/domain"
)

func TestDeleteMissingCommentReturnsNotFound(t *testing.T) {
	t.Parallel()

	users := &fakeUserService{}
	users.addUser(1, "alice")
	server, bearer := newTestServer(t, users, nil, &fakeCommentService{}, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/comments/123", nil)
	req.Header.Set("Authorization", bearer(1))
	rr, env := doRequest(t, server, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", rr.Code, rr.Body.String())
	}
	if env.Success {
		t.Fatal("expected error envelope with success false")
	}
	if env.StatusCode != http.StatusNotFound {
		t.Fatalf("expected envelope statusCode 404, got %d", env.StatusCode)
	}
}

func TestAddAndListVideoComments(t *testing.T) {
	t.Parallel()

	users := &fakeUserService{}
	users.addUser(1, "alice")
	comments := &fakeCommentService{}
	server, bearer := newTestServer(t, users, nil, comments, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/videos/7/comments", strings.NewReader(`{"content": "nice video"}`))
	req.Header.Set("Authorization", bearer(1))
	rr, env := doRequest(t, server, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created domain.Comment
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("unmarshal created comment: %v", err)
	}
	if created.VideoID != 7 || created.OwnerID != 1 {
		t.Fatalf("unexpected created comment: %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/videos/7/comments", nil)
	rr, env = doRequest(t, server, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var page commentPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("unmarshal comment page: %v", err)
	}
	if page.TotalComments != 1 || len(page.Comments) != 1 || page.Comments[0].Content != "nice video" {
		t.Fatalf("expected one comment with the posted content, got %+v", page)
	}
}
