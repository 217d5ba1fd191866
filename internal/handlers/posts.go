package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

const postNowTimeout = 30 * time.Second

// PostHandler serves scheduled post CRUD plus the immediate post-now path.
type PostHandler struct {
	store     Storage
	newClient ClientFactory
	logger    logging.Logger
	metrics   *APIMetrics
}

func NewPostHandler(store Storage, newClient ClientFactory, logger logging.Logger, metrics *APIMetrics) *PostHandler {
	return &PostHandler{store: store, newClient: newClient, logger: logger, metrics: metrics}
}

func (h *PostHandler) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	posts, err := h.store.ListPosts(c.Request.Context(), identity.AccountID)
	if err != nil {
		h.metrics.Inc("posts_list", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to list posts")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("posts_list", "success")
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *PostHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("posts_create", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), identity.AccountID, req)
	if err != nil {
		h.metrics.Inc("posts_create", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to create post")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("posts_create", "success")
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	post, err := h.store.GetPost(c.Request.Context(), identity.AccountID, c.Param("id"))
	if err != nil {
		h.metrics.Inc("posts_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("posts_get", "success")
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("posts_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Status != nil && *req.Status != models.PostStatusDraft && *req.Status != models.PostStatusScheduled {
		h.metrics.Inc("posts_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status can only be set to draft or scheduled"})
		return
	}

	post, err := h.store.UpdatePost(c.Request.Context(), identity.AccountID, c.Param("id"), req)
	if err != nil {
		h.metrics.Inc("posts_update", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("posts_update", "success")
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.store.DeletePost(c.Request.Context(), identity.AccountID, c.Param("id")); err != nil {
		h.metrics.Inc("posts_delete", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("posts_delete", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// PostNow sends a draft or scheduled post immediately. On success the record
// transitions straight to posted with the external id recorded.
func (h *PostHandler) PostNow(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	postID := c.Param("id")

	post, err := h.store.GetPost(ctx, identity.AccountID, postID)
	if err != nil {
		h.metrics.Inc("posts_send_now", "error")
		respondStoreError(c, err)
		return
	}

	if post.Status == models.PostStatusPosted {
		h.metrics.Inc("posts_send_now", "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "Post has already been posted"})
		return
	}
	if strings.TrimSpace(post.Content) == "" {
		h.metrics.Inc("posts_send_now", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post has no content"})
		return
	}

	creds, err := h.store.GetCredentials(ctx, identity.AccountID)
	if err != nil {
		h.metrics.Inc("posts_send_now", "error")
		respondStoreError(c, err)
		return
	}
	if missing := creds.Missing(); len(missing) > 0 {
		h.metrics.Inc("posts_send_now", "no_credentials")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Posting credentials incomplete: missing " + strings.Join(missing, ", "),
		})
		return
	}

	client, err := h.newClient(*creds)
	if err != nil {
		h.metrics.Inc("posts_send_now", "client_error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to build posting client")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not build posting client"})
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, postNowTimeout)
	defer cancel()

	externalID, err := client.CreateTweet(sendCtx, post.Content)
	if err != nil {
		h.metrics.Inc("posts_send_now", "post_error")
		h.logger.WithError(err).WithFields(logging.Fields{
			"account_id": identity.AccountID,
			"post_id":    postID,
		}).Error("Immediate post failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.store.MarkPosted(ctx, identity.AccountID, postID, externalID)
	if err != nil {
		// The tweet is out; surface the stale record rather than failing.
		h.metrics.Inc("posts_send_now", "writeback_error")
		h.logger.WithError(err).WithFields(logging.Fields{
			"account_id":       identity.AccountID,
			"post_id":          postID,
			"external_post_id": externalID,
		}).Error("Posted but failed to update record")
		now := time.Now().UTC()
		post.Status = models.PostStatusPosted
		post.PostedAt = &now
		post.ExternalPostID = &externalID
		post.ErrorMessage = nil
		c.JSON(http.StatusOK, post)
		return
	}

	h.metrics.Inc("posts_send_now", "success")
	c.JSON(http.StatusOK, updated)
}
