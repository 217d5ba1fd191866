package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"launchdeck/internal/dispatch"
	"launchdeck/pkg/auth"
	"launchdeck/pkg/clients/twitter"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

func setupPostRouter(store *storageStub, client *clientStub, factoryErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	factory := func(creds models.PostingCredentials) (dispatch.PostClient, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return client, nil
	}

	handler := NewPostHandler(store, factory, logging.NewLogger(), nil)
	api := router.Group("/api")
	api.Use(auth.JWTAuthMiddleware([]byte(testJWTSecret)))
	{
		api.GET("/scheduled-posts", handler.List)
		api.POST("/scheduled-posts", handler.Create)
		api.GET("/scheduled-posts/:id", handler.Get)
		api.PUT("/scheduled-posts/:id", handler.Update)
		api.DELETE("/scheduled-posts/:id", handler.Delete)
		api.POST("/scheduled-posts/:id/post-now", handler.PostNow)
	}
	return router
}

func fullTestCreds() *models.PostingCredentials {
	return &models.PostingCredentials{
		AccountID:         "acct-1",
		APIKey:            "k",
		APISecret:         "ks",
		AccessToken:       "t",
		AccessTokenSecret: "ts",
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	store := newStorageStub()
	router := setupPostRouter(store, &clientStub{}, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts", map[string]any{"content": "Hello"})
	req.Header.Del("Authorization")
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(store.calls) != 0 {
		t.Fatalf("store must not be touched without auth, saw %v", store.calls)
	}
}

func TestCreatePostWithScheduleBecomesScheduled(t *testing.T) {
	store := newStorageStub()
	router := setupPostRouter(store, &clientStub{}, nil)

	at := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts", map[string]any{
		"content":      "Hello",
		"scheduled_at": at,
	})
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["status"] != models.PostStatusScheduled {
		t.Fatalf("expected scheduled, got %v", body["status"])
	}
}

func TestCreatePostUnknownFieldsSilentlyDropped(t *testing.T) {
	store := newStorageStub()
	router := setupPostRouter(store, &clientStub{}, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts", map[string]any{
		"content":          "Hello",
		"unknown_field":    "ignored",
		"another_surprise": 42,
	})
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unknown fields must not fail the request, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["content"] != "Hello" {
		t.Fatalf("expected content preserved, got %v", body)
	}
}

func TestUpdatePostRejectsTerminalStatus(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	router := setupPostRouter(store, &clientStub{}, nil)

	req := authedRequest(t, http.MethodPut, "/api/scheduled-posts/p1", map[string]any{"status": "posted"})
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 setting status=posted directly, got %d", resp.Code)
	}
}

func TestPostNowSuccess(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	store.credentials = fullTestCreds()
	client := &clientStub{id: "42"}
	router := setupPostRouter(store, client, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["status"] != models.PostStatusPosted {
		t.Fatalf("expected posted, got %v", body["status"])
	}
	if body["external_post_id"] != "42" {
		t.Fatalf("expected external_post_id=42, got %v", body)
	}
	if len(client.calls) != 1 || client.calls[0] != "Hello" {
		t.Fatalf("unexpected client calls: %v", client.calls)
	}
}

func TestPostNowAlreadyPostedConflicts(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusPosted}
	store.credentials = fullTestCreds()
	client := &clientStub{id: "42"}
	router := setupPostRouter(store, client, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if len(client.calls) != 0 {
		t.Fatal("an already-posted record must never be re-sent")
	}
}

func TestPostNowMissingCredentials(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	client := &clientStub{id: "42"}
	router := setupPostRouter(store, client, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if len(client.calls) != 0 {
		t.Fatal("posting API must not be invoked without credentials")
	}
	if body["error"] == nil {
		t.Fatalf("expected error body, got %v", body)
	}
}

func TestPostNowAPIRejection(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	store.credentials = fullTestCreds()
	client := &clientStub{err: &twitter.APIError{StatusCode: 403, Detail: "duplicate content"}}
	router := setupPostRouter(store, client, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if store.posts["p1"].Status != models.PostStatusDraft {
		t.Fatalf("failed send must not change status, got %q", store.posts["p1"].Status)
	}
}

func TestPostNowWritebackFailureStillReportsPosted(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	store.credentials = fullTestCreds()
	store.markPostedErr = errors.New("disk full")
	client := &clientStub{id: "42"}
	router := setupPostRouter(store, client, nil)

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("the tweet went out, expected 200, got %d", resp.Code)
	}
	if body["status"] != models.PostStatusPosted {
		t.Fatalf("response must reflect the sent tweet, got status %v", body["status"])
	}
	if body["external_post_id"] != "42" {
		t.Fatalf("expected external_post_id=42, got %v", body)
	}
	if body["posted_at"] == nil {
		t.Fatal("expected posted_at set")
	}
}

func TestPostNowClientConstructionFailure(t *testing.T) {
	store := newStorageStub()
	store.posts["p1"] = &models.ScheduledPost{ID: "p1", AccountID: "acct-1", Content: "Hello", Status: models.PostStatusDraft}
	store.credentials = fullTestCreds()
	router := setupPostRouter(store, nil, errors.New("bad secrets"))

	req := authedRequest(t, http.MethodPost, "/api/scheduled-posts/p1/post-now", nil)
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
