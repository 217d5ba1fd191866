package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"launchdeck/pkg/models"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return New(db), mock, func() { _ = db.Close() }
}

func strPtr(s string) *string { return &s }

func TestGetAccountNotFound(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, email, display_name").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetAccount(context.Background(), "acct-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAccountCoalescesNilFields(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectExec("UPDATE accounts").
		WithArgs("acct-1", "New Name", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, email, display_name").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "display_name", "bio", "niche", "target_audience",
			"brand_voice", "is_active", "created_at", "updated_at",
		}).AddRow("acct-1", "a@b.c", "New Name", "old bio", "", "", "", true, now, now))

	account, err := s.UpdateAccount(context.Background(), "acct-1", models.UpdateProfileRequest{
		DisplayName: strPtr("New Name"),
	})
	if err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if account.DisplayName != "New Name" || account.Bio != "old bio" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreatePostDefaultsToDraft(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO scheduled_posts").
		WithArgs(sqlmock.AnyArg(), "acct-1", nil, "Hello", models.PostStatusDraft, nil).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "launch_id", "content", "status", "scheduled_at",
			"posted_at", "external_post_id", "error_message", "created_at", "updated_at",
		}).AddRow("p1", "acct-1", nil, "Hello", "draft", nil, nil, nil, nil, now, now))

	post, err := s.CreatePost(context.Background(), "acct-1", models.CreatePostRequest{Content: "Hello"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.Status != models.PostStatusDraft {
		t.Fatalf("expected draft, got %q", post.Status)
	}
}

func TestCreatePostWithScheduleIsScheduled(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	at := now.Add(time.Hour)
	mock.ExpectQuery("INSERT INTO scheduled_posts").
		WithArgs(sqlmock.AnyArg(), "acct-1", nil, "Hello", models.PostStatusScheduled, at).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "launch_id", "content", "status", "scheduled_at",
			"posted_at", "external_post_id", "error_message", "created_at", "updated_at",
		}).AddRow("p1", "acct-1", nil, "Hello", "scheduled", at, nil, nil, nil, now, now))

	post, err := s.CreatePost(context.Background(), "acct-1", models.CreatePostRequest{
		Content:     "Hello",
		ScheduledAt: &at,
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.Status != models.PostStatusScheduled {
		t.Fatalf("expected scheduled, got %q", post.Status)
	}
	if post.ScheduledAt == nil {
		t.Fatal("expected scheduled_at set")
	}
}

func TestUpdatePostRejectsTerminalStates(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("SELECT id, account_id, launch_id, content").
		WithArgs("p1", "acct-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "launch_id", "content", "status", "scheduled_at",
			"posted_at", "external_post_id", "error_message", "created_at", "updated_at",
		}).AddRow("p1", "acct-1", nil, "Hello", "posted", nil, now, "42", nil, now, now))

	_, err := s.UpdatePost(context.Background(), "acct-1", "p1", models.UpdatePostRequest{
		Content: strPtr("Changed"),
	})
	if err == nil {
		t.Fatal("expected error updating a posted post")
	}
}

func TestDeletePostScopedToAccount(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM scheduled_posts").
		WithArgs("p1", "acct-other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeletePost(context.Background(), "acct-other", "p1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign account, got %v", err)
	}
}

func TestGetStrategyMissingRowReturnsEmpty(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, account_id, launch_id, core_message").
		WithArgs("acct-1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	strategy, err := s.GetStrategy(context.Background(), "acct-1", nil)
	if err != nil {
		t.Fatalf("GetStrategy failed: %v", err)
	}
	if strategy.ID != "" || strategy.AccountID != "acct-1" {
		t.Fatalf("expected empty strategy shell, got %+v", strategy)
	}
}

func TestUpsertStrategyFirstWriteInserts(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	strategyCols := []string{
		"id", "account_id", "launch_id", "core_message", "audience_pain", "transformation",
		"proof_points", "objections", "content_pillars", "created_at", "updated_at",
	}

	mock.ExpectQuery("SELECT id, account_id, launch_id, core_message").
		WithArgs("acct-1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO education_strategies").
		WithArgs(sqlmock.AnyArg(), "acct-1", nil, "Ship faster", "", "", "", "", "").
		WillReturnRows(sqlmock.NewRows(strategyCols).
			AddRow("st-1", "acct-1", nil, "Ship faster", "", "", "", "", "", now, now))

	strategy, err := s.UpsertStrategy(context.Background(), "acct-1", nil, models.UpdateStrategyRequest{
		CoreMessage: strPtr("Ship faster"),
	})
	if err != nil {
		t.Fatalf("UpsertStrategy failed: %v", err)
	}
	if strategy.ID != "st-1" || strategy.CoreMessage != "Ship faster" {
		t.Fatalf("unexpected strategy: %+v", strategy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertStrategyBaselineSecondWriteUpdatesByID(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	strategyCols := []string{
		"id", "account_id", "launch_id", "core_message", "audience_pain", "transformation",
		"proof_points", "objections", "content_pillars", "created_at", "updated_at",
	}

	mock.ExpectQuery("SELECT id, account_id, launch_id, core_message").
		WithArgs("acct-1", nil).
		WillReturnRows(sqlmock.NewRows(strategyCols).
			AddRow("st-1", "acct-1", nil, "Old message", "", "", "", "", "", now, now))
	mock.ExpectQuery(`UPDATE education_strategies(.|\n)*WHERE id = \$1`).
		WithArgs("st-1", "New message", "", "", "", "", "").
		WillReturnRows(sqlmock.NewRows(strategyCols).
			AddRow("st-1", "acct-1", nil, "New message", "", "", "", "", "", now, now))

	strategy, err := s.UpsertStrategy(context.Background(), "acct-1", nil, models.UpdateStrategyRequest{
		CoreMessage: strPtr("New message"),
	})
	if err != nil {
		t.Fatalf("UpsertStrategy failed: %v", err)
	}
	if strategy.ID != "st-1" || strategy.CoreMessage != "New message" {
		t.Fatalf("unexpected strategy: %+v", strategy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCredentialsStatusMissingRow(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("FROM posting_credentials").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"a"}))

	status, err := s.CredentialsStatus(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("CredentialsStatus failed: %v", err)
	}
	if status.HasAPIKey || status.HasAccessToken {
		t.Fatalf("expected all-false status, got %+v", status)
	}
}

func TestCredentialsStatusNeverReturnsSecrets(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery("FROM posting_credentials").
		WithArgs("acct-1").
		WillReturnRows(sqlmock.NewRows([]string{"k", "s", "t", "ts", "updated_at"}).
			AddRow(true, true, false, false, now))

	status, err := s.CredentialsStatus(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("CredentialsStatus failed: %v", err)
	}
	if !status.HasAPIKey || !status.HasAPISecret || status.HasAccessToken {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.UpdatedAt == nil {
		t.Fatal("expected updated_at set")
	}
}

func TestMarkPostedClearsErrorMessage(t *testing.T) {
	s, mock, done := newMock(t)
	defer done()

	now := time.Now()
	mock.ExpectExec("UPDATE scheduled_posts").
		WithArgs("p1", "acct-1", "42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, account_id, launch_id, content").
		WithArgs("p1", "acct-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "launch_id", "content", "status", "scheduled_at",
			"posted_at", "external_post_id", "error_message", "created_at", "updated_at",
		}).AddRow("p1", "acct-1", nil, "Hello", "posted", nil, now, "42", nil, now, now))

	post, err := s.MarkPosted(context.Background(), "acct-1", "p1", "42")
	if err != nil {
		t.Fatalf("MarkPosted failed: %v", err)
	}
	if post.Status != models.PostStatusPosted || post.ExternalPostID == nil || *post.ExternalPostID != "42" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if post.ErrorMessage != nil {
		t.Fatal("expected error message cleared")
	}
}
