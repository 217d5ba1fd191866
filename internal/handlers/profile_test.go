package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/auth"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

func setupProfileRouter(store *storageStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewProfileHandler(store, logging.NewLogger(), nil)
	api := router.Group("/api")
	api.Use(auth.JWTAuthMiddleware([]byte(testJWTSecret)))
	{
		api.GET("/profile", handler.Get)
		api.PUT("/profile", handler.Update)
	}
	return router
}

func testAccount() *models.Account {
	return &models.Account{
		ID:          "acct-1",
		Email:       "user@example.com",
		DisplayName: "Dev Tools Co",
		Bio:         "We make tools",
		Niche:       "developer tooling",
	}
}

func TestGetProfile(t *testing.T) {
	store := newStorageStub()
	store.account = testAccount()
	router := setupProfileRouter(store)

	req := authedRequest(t, http.MethodGet, "/api/profile", nil)
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["display_name"] != "Dev Tools Co" {
		t.Fatalf("unexpected profile: %v", body)
	}
}

func TestUpdateProfilePartialFieldsKeepOthers(t *testing.T) {
	store := newStorageStub()
	store.account = testAccount()
	router := setupProfileRouter(store)

	req := authedRequest(t, http.MethodPut, "/api/profile", map[string]any{"bio": "New bio"})
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if body["bio"] != "New bio" {
		t.Fatalf("expected bio updated, got %v", body)
	}
	if body["display_name"] != "Dev Tools Co" {
		t.Fatalf("omitted fields must keep their value, got %v", body)
	}
}

func TestUpdateProfileUnknownFieldsSilentlyDropped(t *testing.T) {
	store := newStorageStub()
	store.account = testAccount()
	router := setupProfileRouter(store)

	req := authedRequest(t, http.MethodPut, "/api/profile", map[string]any{
		"bio":         "New bio",
		"unsupported": "value",
	})
	resp, body := serveJSON(t, router, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unknown fields must not fail the request, got %d", resp.Code)
	}
	if _, present := body["unsupported"]; present {
		t.Fatalf("unknown field must not round-trip, got %v", body)
	}
}

func TestUpdateProfileExpiredToken(t *testing.T) {
	store := newStorageStub()
	store.account = testAccount()
	router := setupProfileRouter(store)

	req := authedRequest(t, http.MethodPut, "/api/profile", map[string]any{"bio": "New bio"})
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, _ := serveJSON(t, router, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(store.calls) != 0 {
		t.Fatalf("store must not be touched without valid auth, saw %v", store.calls)
	}
}
