package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"launchdeck/internal/copygen"
	"launchdeck/internal/store"
	"launchdeck/pkg/auth"
	"launchdeck/pkg/models"
)

const testJWTSecret = "test-secret"

var errNotFoundForTest = store.ErrNotFound

// storageStub is an in-memory Storage with optional forced errors. Methods
// record calls so tests can assert what was (not) touched.
type storageStub struct {
	account     *models.Account
	products    []models.Product
	launches    []models.Launch
	strategies  map[string]*models.EducationStrategy
	posts       map[string]*models.ScheduledPost
	credentials *models.PostingCredentials
	credStatus  *models.CredentialsStatus
	err         error

	markPostedErr error

	calls []string
}

func newStorageStub() *storageStub {
	return &storageStub{
		strategies:  map[string]*models.EducationStrategy{},
		posts:       map[string]*models.ScheduledPost{},
		credentials: &models.PostingCredentials{},
		credStatus:  &models.CredentialsStatus{},
	}
}

func (s *storageStub) record(name string) { s.calls = append(s.calls, name) }

func (s *storageStub) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	s.record("GetAccount")
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func (s *storageStub) UpdateAccount(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.Account, error) {
	s.record("UpdateAccount")
	if s.err != nil {
		return nil, s.err
	}
	updated := *s.account
	if req.DisplayName != nil {
		updated.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		updated.Bio = *req.Bio
	}
	if req.Niche != nil {
		updated.Niche = *req.Niche
	}
	if req.TargetAudience != nil {
		updated.TargetAudience = *req.TargetAudience
	}
	if req.BrandVoice != nil {
		updated.BrandVoice = *req.BrandVoice
	}
	s.account = &updated
	return &updated, nil
}

func (s *storageStub) ListProducts(ctx context.Context, accountID string) ([]models.Product, error) {
	s.record("ListProducts")
	return s.products, s.err
}

func (s *storageStub) GetProduct(ctx context.Context, accountID, productID string) (*models.Product, error) {
	s.record("GetProduct")
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.products {
		if s.products[i].ID == productID {
			return &s.products[i], nil
		}
	}
	return nil, errNotFoundForTest
}

func (s *storageStub) CreateProduct(ctx context.Context, accountID string, req models.CreateProductRequest) (*models.Product, error) {
	s.record("CreateProduct")
	if s.err != nil {
		return nil, s.err
	}
	p := models.Product{ID: "prod-new", AccountID: accountID, Name: req.Name, Description: req.Description}
	s.products = append(s.products, p)
	return &p, nil
}

func (s *storageStub) UpdateProduct(ctx context.Context, accountID, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	s.record("UpdateProduct")
	if s.err != nil {
		return nil, s.err
	}
	return s.GetProduct(ctx, accountID, productID)
}

func (s *storageStub) DeleteProduct(ctx context.Context, accountID, productID string) error {
	s.record("DeleteProduct")
	return s.err
}

func (s *storageStub) ListLaunches(ctx context.Context, accountID string) ([]models.Launch, error) {
	s.record("ListLaunches")
	return s.launches, s.err
}

func (s *storageStub) GetLaunch(ctx context.Context, accountID, launchID string) (*models.Launch, error) {
	s.record("GetLaunch")
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.launches {
		if s.launches[i].ID == launchID {
			return &s.launches[i], nil
		}
	}
	return nil, errNotFoundForTest
}

func (s *storageStub) CreateLaunch(ctx context.Context, accountID string, req models.CreateLaunchRequest) (*models.Launch, error) {
	s.record("CreateLaunch")
	if s.err != nil {
		return nil, s.err
	}
	l := models.Launch{ID: "launch-new", AccountID: accountID, ProductID: req.ProductID, Name: req.Name, Status: models.LaunchStatusPlanning}
	s.launches = append(s.launches, l)
	return &l, nil
}

func (s *storageStub) UpdateLaunch(ctx context.Context, accountID, launchID string, req models.UpdateLaunchRequest) (*models.Launch, error) {
	s.record("UpdateLaunch")
	if s.err != nil {
		return nil, s.err
	}
	return s.GetLaunch(ctx, accountID, launchID)
}

func (s *storageStub) DeleteLaunch(ctx context.Context, accountID, launchID string) error {
	s.record("DeleteLaunch")
	return s.err
}

func strategyKey(launchID *string) string {
	if launchID == nil {
		return "baseline"
	}
	return *launchID
}

func (s *storageStub) GetStrategy(ctx context.Context, accountID string, launchID *string) (*models.EducationStrategy, error) {
	s.record("GetStrategy")
	if s.err != nil {
		return nil, s.err
	}
	if st, ok := s.strategies[strategyKey(launchID)]; ok {
		return st, nil
	}
	return &models.EducationStrategy{AccountID: accountID, LaunchID: launchID}, nil
}

func (s *storageStub) UpsertStrategy(ctx context.Context, accountID string, launchID *string, req models.UpdateStrategyRequest) (*models.EducationStrategy, error) {
	s.record("UpsertStrategy")
	if s.err != nil {
		return nil, s.err
	}
	st := &models.EducationStrategy{ID: "strategy-new", AccountID: accountID, LaunchID: launchID}
	if req.CoreMessage != nil {
		st.CoreMessage = *req.CoreMessage
	}
	s.strategies[strategyKey(launchID)] = st
	return st, nil
}

func (s *storageStub) ListPosts(ctx context.Context, accountID string) ([]models.ScheduledPost, error) {
	s.record("ListPosts")
	if s.err != nil {
		return nil, s.err
	}
	posts := []models.ScheduledPost{}
	for _, p := range s.posts {
		posts = append(posts, *p)
	}
	return posts, nil
}

func (s *storageStub) GetPost(ctx context.Context, accountID, postID string) (*models.ScheduledPost, error) {
	s.record("GetPost")
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.posts[postID]; ok {
		return p, nil
	}
	return nil, errNotFoundForTest
}

func (s *storageStub) CreatePost(ctx context.Context, accountID string, req models.CreatePostRequest) (*models.ScheduledPost, error) {
	s.record("CreatePost")
	if s.err != nil {
		return nil, s.err
	}
	status := models.PostStatusDraft
	if req.ScheduledAt != nil {
		status = models.PostStatusScheduled
	}
	p := &models.ScheduledPost{ID: "post-new", AccountID: accountID, Content: req.Content, Status: status, ScheduledAt: req.ScheduledAt}
	s.posts[p.ID] = p
	return p, nil
}

func (s *storageStub) UpdatePost(ctx context.Context, accountID, postID string, req models.UpdatePostRequest) (*models.ScheduledPost, error) {
	s.record("UpdatePost")
	if s.err != nil {
		return nil, s.err
	}
	return s.GetPost(ctx, accountID, postID)
}

func (s *storageStub) DeletePost(ctx context.Context, accountID, postID string) error {
	s.record("DeletePost")
	return s.err
}

func (s *storageStub) MarkPosted(ctx context.Context, accountID, postID, externalPostID string) (*models.ScheduledPost, error) {
	s.record("MarkPosted")
	if s.err != nil {
		return nil, s.err
	}
	if s.markPostedErr != nil {
		return nil, s.markPostedErr
	}
	p, ok := s.posts[postID]
	if !ok {
		return nil, errNotFoundForTest
	}
	now := time.Now()
	p.Status = models.PostStatusPosted
	p.PostedAt = &now
	p.ExternalPostID = &externalPostID
	p.ErrorMessage = nil
	return p, nil
}

func (s *storageStub) GetCredentials(ctx context.Context, accountID string) (*models.PostingCredentials, error) {
	s.record("GetCredentials")
	if s.err != nil {
		return nil, s.err
	}
	return s.credentials, nil
}

func (s *storageStub) UpsertCredentials(ctx context.Context, accountID string, req models.UpdateCredentialsRequest) error {
	s.record("UpsertCredentials")
	return s.err
}

func (s *storageStub) CredentialsStatus(ctx context.Context, accountID string) (*models.CredentialsStatus, error) {
	s.record("CredentialsStatus")
	if s.err != nil {
		return nil, s.err
	}
	return s.credStatus, nil
}

type generatorStub struct {
	drafts []string
	err    error
	lastIn copygen.Input
}

func (g *generatorStub) Generate(ctx context.Context, in copygen.Input) ([]string, error) {
	g.lastIn = in
	if g.err != nil {
		return nil, g.err
	}
	return g.drafts, nil
}

type runnerStub struct {
	summary models.DispatchSummary
	err     error
	calls   int
}

func (r *runnerStub) RunPass(ctx context.Context, now time.Time) (models.DispatchSummary, error) {
	r.calls++
	if r.err != nil {
		return models.DispatchSummary{}, r.err
	}
	return r.summary, nil
}

type clientStub struct {
	id    string
	err   error
	calls []string
}

func (c *clientStub) CreateTweet(ctx context.Context, text string) (string, error) {
	c.calls = append(c.calls, text)
	if c.err != nil {
		return "", c.err
	}
	return c.id, nil
}

// authedRequest builds a request carrying a valid bearer token for acct-1.
func authedRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	token, err := auth.GenerateJWT("acct-1", "user@example.com", "user", []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serveJSON(t *testing.T, router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body map[string]any
	if len(resp.Body.Bytes()) > 0 {
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, resp.Body.String())
		}
	}
	return resp, body
}
