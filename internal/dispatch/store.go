package dispatch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"launchdeck/pkg/models"
)

// PostgresStore implements Store against the scheduled_posts and
// posting_credentials tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps a database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindDuePosts returns scheduled posts whose scheduled_at has passed, joined
// with their owners' posting credentials. Only status='scheduled' rows
// qualify, so posts already transitioned to posted or error are never
// re-dispatched regardless of scheduled_at. Rows come back in ascending
// scheduled_at order (id breaks ties) so older posts are attempted first.
func (s *PostgresStore) FindDuePosts(ctx context.Context, now time.Time) ([]models.DuePost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.account_id, p.content, p.status, p.scheduled_at,
		       COALESCE(c.api_key, ''), COALESCE(c.api_secret, ''),
		       COALESCE(c.access_token, ''), COALESCE(c.access_token_secret, '')
		FROM scheduled_posts p
		LEFT JOIN posting_credentials c ON c.account_id = p.account_id
		WHERE p.status = 'scheduled'
		  AND p.scheduled_at IS NOT NULL
		  AND p.scheduled_at <= $1
		ORDER BY p.scheduled_at ASC, p.id ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("select due posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var due []models.DuePost
	for rows.Next() {
		var d models.DuePost
		var scheduledAt sql.NullTime
		if err := rows.Scan(
			&d.Post.ID, &d.Post.AccountID, &d.Post.Content, &d.Post.Status, &scheduledAt,
			&d.Credentials.APIKey, &d.Credentials.APISecret,
			&d.Credentials.AccessToken, &d.Credentials.AccessTokenSecret,
		); err != nil {
			return nil, fmt.Errorf("scan due post: %w", err)
		}
		if scheduledAt.Valid {
			t := scheduledAt.Time
			d.Post.ScheduledAt = &t
		}
		d.Credentials.AccountID = d.Post.AccountID
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due posts: %w", err)
	}
	return due, nil
}

// RecordOutcome writes one dispatch outcome back to the post. The update is
// guarded on status='scheduled' so a record that already left the scheduled
// state (a concurrent pass, manual intervention) is left untouched.
func (s *PostgresStore) RecordOutcome(ctx context.Context, id string, outcome Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = $2, posted_at = $3, external_post_id = $4, error_message = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
	`, id, outcome.Status, outcome.PostedAt, outcome.ExternalPostID, outcome.ErrorMessage)
	if err != nil {
		return fmt.Errorf("update post %s: %w", id, err)
	}
	return nil
}
