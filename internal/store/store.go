package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"launchdeck/pkg/models"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different account.
var ErrNotFound = errors.New("record not found")

// Store is the Postgres persistence layer behind the product API. Every
// query is scoped to one account; a row owned by another account is
// indistinguishable from a missing row.
type Store struct {
	db *sql.DB
}

// New wraps a database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapRowErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetAccount loads an account's marketing profile.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, bio, niche, target_audience, brand_voice,
		       is_active, created_at, updated_at
		FROM accounts WHERE id = $1
	`, accountID).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.Bio, &a.Niche, &a.TargetAudience,
		&a.BrandVoice, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr("get account", err)
	}
	return &a, nil
}

// UpdateAccount applies the provided profile fields and returns the updated
// row. Nil fields keep their stored value.
func (s *Store) UpdateAccount(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.Account, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET display_name    = COALESCE($2, display_name),
		    bio             = COALESCE($3, bio),
		    niche           = COALESCE($4, niche),
		    target_audience = COALESCE($5, target_audience),
		    brand_voice     = COALESCE($6, brand_voice),
		    updated_at      = NOW()
		WHERE id = $1
	`, accountID, req.DisplayName, req.Bio, req.Niche, req.TargetAudience, req.BrandVoice)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return s.GetAccount(ctx, accountID)
}

// ListProducts returns the account's products, newest first.
func (s *Store) ListProducts(ctx context.Context, accountID string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, name, description, price, url, created_at, updated_at
		FROM products WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.Description, &p.Price, &p.URL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct loads one product scoped to the account.
func (s *Store) GetProduct(ctx context.Context, accountID, productID string) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, description, price, url, created_at, updated_at
		FROM products WHERE id = $1 AND account_id = $2
	`, productID, accountID).Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Description, &p.Price, &p.URL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapRowErr("get product", err)
	}
	return &p, nil
}

// CreateProduct inserts a product and returns it.
func (s *Store) CreateProduct(ctx context.Context, accountID string, req models.CreateProductRequest) (*models.Product, error) {
	id := uuid.New().String()
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, account_id, name, description, price, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, account_id, name, description, price, url, created_at, updated_at
	`, id, accountID, req.Name, req.Description, req.Price, req.URL).Scan(
		&p.ID, &p.AccountID, &p.Name, &p.Description, &p.Price, &p.URL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies the provided fields and returns the updated row.
func (s *Store) UpdateProduct(ctx context.Context, accountID, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name        = COALESCE($3, name),
		    description = COALESCE($4, description),
		    price       = COALESCE($5, price),
		    url         = COALESCE($6, url),
		    updated_at  = NOW()
		WHERE id = $1 AND account_id = $2
	`, productID, accountID, req.Name, req.Description, req.Price, req.URL)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProduct(ctx, accountID, productID)
}

// DeleteProduct removes a product. Launches referencing it cascade away.
func (s *Store) DeleteProduct(ctx context.Context, accountID, productID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = $1 AND account_id = $2
	`, productID, accountID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLaunches returns the account's launches, newest first.
func (s *Store) ListLaunches(ctx context.Context, accountID string) ([]models.Launch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, product_id, name, description, goal, status,
		       starts_at, ends_at, created_at, updated_at
		FROM launches WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list launches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	launches := []models.Launch{}
	for rows.Next() {
		l, err := scanLaunch(rows)
		if err != nil {
			return nil, err
		}
		launches = append(launches, *l)
	}
	return launches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLaunch(row rowScanner) (*models.Launch, error) {
	var l models.Launch
	var startsAt, endsAt sql.NullTime
	if err := row.Scan(
		&l.ID, &l.AccountID, &l.ProductID, &l.Name, &l.Description, &l.Goal,
		&l.Status, &startsAt, &endsAt, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if startsAt.Valid {
		t := startsAt.Time
		l.StartsAt = &t
	}
	if endsAt.Valid {
		t := endsAt.Time
		l.EndsAt = &t
	}
	return &l, nil
}

// GetLaunch loads one launch scoped to the account.
func (s *Store) GetLaunch(ctx context.Context, accountID, launchID string) (*models.Launch, error) {
	l, err := scanLaunch(s.db.QueryRowContext(ctx, `
		SELECT id, account_id, product_id, name, description, goal, status,
		       starts_at, ends_at, created_at, updated_at
		FROM launches WHERE id = $1 AND account_id = $2
	`, launchID, accountID))
	if err != nil {
		return nil, mapRowErr("get launch", err)
	}
	return l, nil
}

// CreateLaunch inserts a launch in planning status. The product must belong
// to the same account.
func (s *Store) CreateLaunch(ctx context.Context, accountID string, req models.CreateLaunchRequest) (*models.Launch, error) {
	if _, err := s.GetProduct(ctx, accountID, req.ProductID); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	l, err := scanLaunch(s.db.QueryRowContext(ctx, `
		INSERT INTO launches (id, account_id, product_id, name, description, goal, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, account_id, product_id, name, description, goal, status,
		          starts_at, ends_at, created_at, updated_at
	`, id, accountID, req.ProductID, req.Name, req.Description, req.Goal, req.StartsAt, req.EndsAt))
	if err != nil {
		return nil, fmt.Errorf("create launch: %w", err)
	}
	return l, nil
}

// UpdateLaunch applies the provided fields and returns the updated row.
func (s *Store) UpdateLaunch(ctx context.Context, accountID, launchID string, req models.UpdateLaunchRequest) (*models.Launch, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE launches
		SET name        = COALESCE($3, name),
		    description = COALESCE($4, description),
		    goal        = COALESCE($5, goal),
		    status      = COALESCE($6, status),
		    starts_at   = COALESCE($7, starts_at),
		    ends_at     = COALESCE($8, ends_at),
		    updated_at  = NOW()
		WHERE id = $1 AND account_id = $2
	`, launchID, accountID, req.Name, req.Description, req.Goal, req.Status, req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("update launch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetLaunch(ctx, accountID, launchID)
}

// DeleteLaunch removes a launch; its strategy row cascades away and its
// posts keep a null launch_id.
func (s *Store) DeleteLaunch(ctx context.Context, accountID, launchID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM launches WHERE id = $1 AND account_id = $2
	`, launchID, accountID)
	if err != nil {
		return fmt.Errorf("delete launch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStrategy loads the education strategy for a launch, or the account
// baseline when launchID is nil. A missing row returns an empty strategy
// rather than ErrNotFound so the surface always has something to edit.
func (s *Store) GetStrategy(ctx context.Context, accountID string, launchID *string) (*models.EducationStrategy, error) {
	var st models.EducationStrategy
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, launch_id, core_message, audience_pain, transformation,
		       proof_points, objections, content_pillars, created_at, updated_at
		FROM education_strategies
		WHERE account_id = $1 AND launch_id IS NOT DISTINCT FROM $2
	`, accountID, launchID).Scan(
		&st.ID, &st.AccountID, &st.LaunchID, &st.CoreMessage, &st.AudiencePain,
		&st.Transformation, &st.ProofPoints, &st.Objections, &st.ContentPillars,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.EducationStrategy{AccountID: accountID, LaunchID: launchID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get strategy: %w", err)
	}
	return &st, nil
}

// UpsertStrategy creates or updates the strategy row for a launch (or the
// account baseline) and returns the result.
func (s *Store) UpsertStrategy(ctx context.Context, accountID string, launchID *string, req models.UpdateStrategyRequest) (*models.EducationStrategy, error) {
	current, err := s.GetStrategy(ctx, accountID, launchID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&current.CoreMessage, req.CoreMessage)
	apply(&current.AudiencePain, req.AudiencePain)
	apply(&current.Transformation, req.Transformation)
	apply(&current.ProofPoints, req.ProofPoints)
	apply(&current.Objections, req.Objections)
	apply(&current.ContentPillars, req.ContentPillars)

	var st models.EducationStrategy

	// An existing row is updated by primary key. The ON CONFLICT arbiter
	// cannot serve the baseline row: Postgres treats NULLs as distinct in
	// unique constraints, so a NULL launch_id never matches it.
	if current.ID != "" {
		err = s.db.QueryRowContext(ctx, `
			UPDATE education_strategies
			SET core_message = $2, audience_pain = $3, transformation = $4,
			    proof_points = $5, objections = $6, content_pillars = $7,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING id, account_id, launch_id, core_message, audience_pain, transformation,
			          proof_points, objections, content_pillars, created_at, updated_at
		`, current.ID, current.CoreMessage, current.AudiencePain, current.Transformation,
			current.ProofPoints, current.Objections, current.ContentPillars,
		).Scan(
			&st.ID, &st.AccountID, &st.LaunchID, &st.CoreMessage, &st.AudiencePain,
			&st.Transformation, &st.ProofPoints, &st.Objections, &st.ContentPillars,
			&st.CreatedAt, &st.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("update strategy: %w", err)
		}
		return &st, nil
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO education_strategies
			(id, account_id, launch_id, core_message, audience_pain, transformation,
			 proof_points, objections, content_pillars)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (account_id, launch_id) DO UPDATE
		SET core_message = EXCLUDED.core_message,
		    audience_pain = EXCLUDED.audience_pain,
		    transformation = EXCLUDED.transformation,
		    proof_points = EXCLUDED.proof_points,
		    objections = EXCLUDED.objections,
		    content_pillars = EXCLUDED.content_pillars,
		    updated_at = NOW()
		RETURNING id, account_id, launch_id, core_message, audience_pain, transformation,
		          proof_points, objections, content_pillars, created_at, updated_at
	`, uuid.New().String(), accountID, launchID, current.CoreMessage, current.AudiencePain,
		current.Transformation, current.ProofPoints, current.Objections, current.ContentPillars,
	).Scan(
		&st.ID, &st.AccountID, &st.LaunchID, &st.CoreMessage, &st.AudiencePain,
		&st.Transformation, &st.ProofPoints, &st.Objections, &st.ContentPillars,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert strategy: %w", err)
	}
	return &st, nil
}

// ListPosts returns the account's posts, newest first.
func (s *Store) ListPosts(ctx context.Context, accountID string) ([]models.ScheduledPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, launch_id, content, status, scheduled_at, posted_at,
		       external_post_id, error_message, created_at, updated_at
		FROM scheduled_posts WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := []models.ScheduledPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func scanPost(row rowScanner) (*models.ScheduledPost, error) {
	var p models.ScheduledPost
	var scheduledAt, postedAt sql.NullTime
	if err := row.Scan(
		&p.ID, &p.AccountID, &p.LaunchID, &p.Content, &p.Status, &scheduledAt,
		&postedAt, &p.ExternalPostID, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		p.ScheduledAt = &t
	}
	if postedAt.Valid {
		t := postedAt.Time
		p.PostedAt = &t
	}
	return &p, nil
}

// GetPost loads one post scoped to the account.
func (s *Store) GetPost(ctx context.Context, accountID, postID string) (*models.ScheduledPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `
		SELECT id, account_id, launch_id, content, status, scheduled_at, posted_at,
		       external_post_id, error_message, created_at, updated_at
		FROM scheduled_posts WHERE id = $1 AND account_id = $2
	`, postID, accountID))
	if err != nil {
		return nil, mapRowErr("get post", err)
	}
	return p, nil
}

// CreatePost inserts a post. With a scheduled_at it starts scheduled,
// without one it starts as a draft.
func (s *Store) CreatePost(ctx context.Context, accountID string, req models.CreatePostRequest) (*models.ScheduledPost, error) {
	status := models.PostStatusDraft
	if req.ScheduledAt != nil {
		status = models.PostStatusScheduled
	}

	id := uuid.New().String()
	p, err := scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO scheduled_posts (id, account_id, launch_id, content, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, account_id, launch_id, content, status, scheduled_at, posted_at,
		          external_post_id, error_message, created_at, updated_at
	`, id, accountID, req.LaunchID, req.Content, status, req.ScheduledAt))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// UpdatePost applies the provided fields to a draft or scheduled post and
// returns the updated row. Posts that already reached posted or error are
// immutable.
func (s *Store) UpdatePost(ctx context.Context, accountID, postID string, req models.UpdatePostRequest) (*models.ScheduledPost, error) {
	current, err := s.GetPost(ctx, accountID, postID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.PostStatusDraft && current.Status != models.PostStatusScheduled {
		return nil, fmt.Errorf("post %s is %s and can no longer be edited", postID, current.Status)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET content      = COALESCE($3, content),
		    scheduled_at = COALESCE($4, scheduled_at),
		    status       = COALESCE($5, status),
		    updated_at   = NOW()
		WHERE id = $1 AND account_id = $2
	`, postID, accountID, req.Content, req.ScheduledAt, req.Status)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.GetPost(ctx, accountID, postID)
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, accountID, postID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM scheduled_posts WHERE id = $1 AND account_id = $2
	`, postID, accountID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPosted transitions a post straight to posted after an immediate send.
func (s *Store) MarkPosted(ctx context.Context, accountID, postID, externalPostID string) (*models.ScheduledPost, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = 'posted', posted_at = NOW(), external_post_id = $3,
		    error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND account_id = $2
	`, postID, accountID, externalPostID)
	if err != nil {
		return nil, fmt.Errorf("mark posted: %w", err)
	}
	return s.GetPost(ctx, accountID, postID)
}

// GetCredentials loads the account's posting secrets. A missing row returns
// empty credentials.
func (s *Store) GetCredentials(ctx context.Context, accountID string) (*models.PostingCredentials, error) {
	var creds models.PostingCredentials
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, api_key, api_secret, access_token, access_token_secret
		FROM posting_credentials WHERE account_id = $1
	`, accountID).Scan(
		&creds.AccountID, &creds.APIKey, &creds.APISecret,
		&creds.AccessToken, &creds.AccessTokenSecret,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.PostingCredentials{AccountID: accountID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &creds, nil
}

// UpsertCredentials replaces the account's posting secrets.
func (s *Store) UpsertCredentials(ctx context.Context, accountID string, req models.UpdateCredentialsRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posting_credentials (account_id, api_key, api_secret, access_token, access_token_secret)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE
		SET api_key = EXCLUDED.api_key,
		    api_secret = EXCLUDED.api_secret,
		    access_token = EXCLUDED.access_token,
		    access_token_secret = EXCLUDED.access_token_secret,
		    updated_at = NOW()
	`, accountID, req.APIKey, req.APISecret, req.AccessToken, req.AccessTokenSecret)
	if err != nil {
		return fmt.Errorf("upsert credentials: %w", err)
	}
	return nil
}

// CredentialsStatus reports which secrets are stored without returning them.
func (s *Store) CredentialsStatus(ctx context.Context, accountID string) (*models.CredentialsStatus, error) {
	var status models.CredentialsStatus
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT api_key <> '', api_secret <> '', access_token <> '', access_token_secret <> '', updated_at
		FROM posting_credentials WHERE account_id = $1
	`, accountID).Scan(
		&status.HasAPIKey, &status.HasAPISecret, &status.HasAccessToken,
		&status.HasAccessTokenSecret, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.CredentialsStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credentials status: %w", err)
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		status.UpdatedAt = &t
	}
	return &status, nil
}
