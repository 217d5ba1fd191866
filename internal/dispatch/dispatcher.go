package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"launchdeck/pkg/clients/twitter"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// Store is the record-store surface the dispatcher needs: fetch due posts
// with their owners' credentials, and write back one outcome per post.
type Store interface {
	FindDuePosts(ctx context.Context, now time.Time) ([]models.DuePost, error)
	RecordOutcome(ctx context.Context, id string, outcome Outcome) error
}

// PostClient posts one piece of content and returns the external post id.
type PostClient interface {
	CreateTweet(ctx context.Context, text string) (string, error)
}

// ClientFactory builds a posting client from an account's credentials.
// It fails when the credentials are malformed or incomplete.
type ClientFactory func(creds models.PostingCredentials) (PostClient, error)

// Outcome is the writeback for one processed post.
type Outcome struct {
	Status         string
	PostedAt       *time.Time
	ExternalPostID *string
	ErrorMessage   *string
}

// Metrics holds the dispatcher's Prometheus instruments. Nil disables them.
type Metrics struct {
	Posts             *prometheus.CounterVec
	WritebackFailures *prometheus.CounterVec
	PassDuration      *prometheus.HistogramVec
}

// Dispatcher runs dispatch passes over due scheduled posts. It is
// single-threaded: one candidate is fully processed (including its
// writeback) before the next one starts, and the Dispatcher itself has no
// timer or retry loop. Overlapping passes are not defended against; the
// deployment runs at most one trigger at a time.
type Dispatcher struct {
	store       Store
	newClient   ClientFactory
	logger      logging.Logger
	metrics     *Metrics
	postTimeout time.Duration
}

// Config wires a Dispatcher's collaborators.
type Config struct {
	Store       Store
	NewClient   ClientFactory
	Logger      logging.Logger
	Metrics     *Metrics
	PostTimeout time.Duration
}

const defaultPostTimeout = 30 * time.Second

// contentEmptyMessage is recorded when a post comes due with no content.
const contentEmptyMessage = "Content was empty at scheduled time."

// NewDispatcher builds a Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	timeout := cfg.PostTimeout
	if timeout <= 0 {
		timeout = defaultPostTimeout
	}
	return &Dispatcher{
		store:       cfg.Store,
		newClient:   cfg.NewClient,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		postTimeout: timeout,
	}
}

// RunPass executes one dispatch pass at the injected time. Due posts are
// processed in ascending scheduled_at order. Every candidate gets exactly
// one writeback; a single candidate's failure never aborts the pass. The
// pass itself fails only when the due-post query fails, in which case no
// writebacks happen.
func (d *Dispatcher) RunPass(ctx context.Context, now time.Time) (models.DispatchSummary, error) {
	start := time.Now()
	defer func() {
		if d.metrics != nil && d.metrics.PassDuration != nil {
			d.metrics.PassDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}()

	due, err := d.store.FindDuePosts(ctx, now)
	if err != nil {
		return models.DispatchSummary{}, fmt.Errorf("query due posts: %w", err)
	}

	summary := models.DispatchSummary{Processed: make([]models.PostOutcome, 0, len(due))}
	for _, candidate := range due {
		outcome := d.dispatchOne(ctx, candidate, now)

		if outcome.Status == models.PostStatusPosted {
			summary.SuccessfulPosts++
		} else {
			summary.FailedPosts++
		}
		d.countOutcome(outcome)

		detail := ""
		if outcome.ErrorMessage != nil {
			detail = *outcome.ErrorMessage
		} else if outcome.ExternalPostID != nil {
			detail = "external post id " + *outcome.ExternalPostID
		}
		summary.Processed = append(summary.Processed, models.PostOutcome{
			ID:     candidate.Post.ID,
			Status: outcome.Status,
			Detail: detail,
		})

		if err := d.store.RecordOutcome(ctx, candidate.Post.ID, outcome); err != nil {
			// Best effort: the record's stored state may now lag the outcome
			// above. A later pass will pick the post up again only if it is
			// still marked scheduled.
			d.logger.WithError(err).WithFields(logging.Fields{
				"post_id": candidate.Post.ID,
				"status":  outcome.Status,
			}).Error("Failed to write back dispatch outcome")
			if d.metrics != nil && d.metrics.WritebackFailures != nil {
				d.metrics.WritebackFailures.WithLabelValues(outcome.Status).Inc()
			}
		}
	}

	d.logger.WithFields(logging.Fields{
		"due":        len(due),
		"successful": summary.SuccessfulPosts,
		"failed":     summary.FailedPosts,
	}).Info("Dispatch pass complete")

	return summary, nil
}

// dispatchOne evaluates a single candidate and returns its outcome without
// touching the store.
func (d *Dispatcher) dispatchOne(ctx context.Context, candidate models.DuePost, now time.Time) Outcome {
	post := candidate.Post

	if strings.TrimSpace(post.Content) == "" {
		return errorOutcome(contentEmptyMessage)
	}

	if missing := candidate.Credentials.Missing(); len(missing) > 0 {
		return errorOutcome(fmt.Sprintf("Posting credentials incomplete: missing %s.", strings.Join(missing, ", ")))
	}

	client, err := d.newClient(candidate.Credentials)
	if err != nil {
		return errorOutcome(fmt.Sprintf("Could not build posting client: %v", err))
	}

	postCtx, cancel := context.WithTimeout(ctx, d.postTimeout)
	defer cancel()

	externalID, err := client.CreateTweet(postCtx, post.Content)
	if err != nil {
		return errorOutcome(postErrorMessage(err))
	}

	postedAt := now
	return Outcome{
		Status:         models.PostStatusPosted,
		PostedAt:       &postedAt,
		ExternalPostID: &externalID,
	}
}

// postErrorMessage maps a posting failure to the message stored on the
// record. Structured API rejections keep the API's own wording; everything
// else is treated as a transport failure and recorded verbatim.
func postErrorMessage(err error) string {
	var apiErr *twitter.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail == "" && apiErr.Title == "" && len(apiErr.Messages) == 0 {
			return "Twitter returned an unknown error."
		}
		return apiErr.Error()
	}
	return fmt.Sprintf("Failed to post: %v", err)
}

func errorOutcome(message string) Outcome {
	return Outcome{
		Status:       models.PostStatusError,
		ErrorMessage: &message,
	}
}

func (d *Dispatcher) countOutcome(outcome Outcome) {
	if d.metrics == nil || d.metrics.Posts == nil {
		return
	}
	d.metrics.Posts.WithLabelValues(outcome.Status).Inc()
}

// TwitterClientFactory is the production ClientFactory backed by the real
// posting API client.
func TwitterClientFactory(opts ...twitter.Option) ClientFactory {
	return func(creds models.PostingCredentials) (PostClient, error) {
		return twitter.NewClient(creds, opts...)
	}
}
