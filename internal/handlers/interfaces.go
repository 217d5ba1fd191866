package handlers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"launchdeck/internal/copygen"
	"launchdeck/internal/dispatch"
	"launchdeck/pkg/models"
)

// Storage is the persistence surface the product API handlers depend on.
// internal/store.Store implements it; tests substitute stubs.
type Storage interface {
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.Account, error)

	ListProducts(ctx context.Context, accountID string) ([]models.Product, error)
	GetProduct(ctx context.Context, accountID, productID string) (*models.Product, error)
	CreateProduct(ctx context.Context, accountID string, req models.CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, accountID, productID string, req models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, accountID, productID string) error

	ListLaunches(ctx context.Context, accountID string) ([]models.Launch, error)
	GetLaunch(ctx context.Context, accountID, launchID string) (*models.Launch, error)
	CreateLaunch(ctx context.Context, accountID string, req models.CreateLaunchRequest) (*models.Launch, error)
	UpdateLaunch(ctx context.Context, accountID, launchID string, req models.UpdateLaunchRequest) (*models.Launch, error)
	DeleteLaunch(ctx context.Context, accountID, launchID string) error

	GetStrategy(ctx context.Context, accountID string, launchID *string) (*models.EducationStrategy, error)
	UpsertStrategy(ctx context.Context, accountID string, launchID *string, req models.UpdateStrategyRequest) (*models.EducationStrategy, error)

	ListPosts(ctx context.Context, accountID string) ([]models.ScheduledPost, error)
	GetPost(ctx context.Context, accountID, postID string) (*models.ScheduledPost, error)
	CreatePost(ctx context.Context, accountID string, req models.CreatePostRequest) (*models.ScheduledPost, error)
	UpdatePost(ctx context.Context, accountID, postID string, req models.UpdatePostRequest) (*models.ScheduledPost, error)
	DeletePost(ctx context.Context, accountID, postID string) error
	MarkPosted(ctx context.Context, accountID, postID, externalPostID string) (*models.ScheduledPost, error)

	GetCredentials(ctx context.Context, accountID string) (*models.PostingCredentials, error)
	UpsertCredentials(ctx context.Context, accountID string, req models.UpdateCredentialsRequest) error
	CredentialsStatus(ctx context.Context, accountID string) (*models.CredentialsStatus, error)
}

// CopyGenerator produces post drafts from an account's marketing context.
type CopyGenerator interface {
	Generate(ctx context.Context, in copygen.Input) ([]string, error)
}

// DispatchRunner executes one dispatch pass over due scheduled posts.
type DispatchRunner interface {
	RunPass(ctx context.Context, now time.Time) (models.DispatchSummary, error)
}

// ClientFactory builds a posting client for immediate sends.
type ClientFactory = dispatch.ClientFactory

// APIMetrics counts handler operations by outcome.
type APIMetrics struct {
	Operations *prometheus.CounterVec
}

func (m *APIMetrics) Inc(operation, status string) {
	if m == nil || m.Operations == nil {
		return
	}
	m.Operations.WithLabelValues(operation, status).Inc()
}
