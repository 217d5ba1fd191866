package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"launchdeck/internal/copygen"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

const generateTimeout = 60 * time.Second

// CopyHandler serves AI-assisted copy generation.
type CopyHandler struct {
	store     Storage
	generator CopyGenerator
	logger    logging.Logger
	metrics   *APIMetrics
}

func NewCopyHandler(store Storage, generator CopyGenerator, logger logging.Logger, metrics *APIMetrics) *CopyHandler {
	return &CopyHandler{store: store, generator: generator, logger: logger, metrics: metrics}
}

// Generate builds drafts from the caller's profile, the named launch, and
// its strategy. A launch without its own strategy falls back to the account
// baseline.
func (h *CopyHandler) Generate(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.GenerateCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("copy_generate", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ctx := c.Request.Context()

	account, err := h.store.GetAccount(ctx, identity.AccountID)
	if err != nil {
		h.metrics.Inc("copy_generate", "error")
		respondStoreError(c, err)
		return
	}

	launch, err := h.store.GetLaunch(ctx, identity.AccountID, req.LaunchID)
	if err != nil {
		h.metrics.Inc("copy_generate", "error")
		respondStoreError(c, err)
		return
	}

	strategy, err := h.store.GetStrategy(ctx, identity.AccountID, &req.LaunchID)
	if err != nil {
		h.metrics.Inc("copy_generate", "error")
		respondStoreError(c, err)
		return
	}
	if strategy.ID == "" {
		// No launch override stored, fall back to the account baseline.
		strategy, err = h.store.GetStrategy(ctx, identity.AccountID, nil)
		if err != nil {
			h.metrics.Inc("copy_generate", "error")
			respondStoreError(c, err)
			return
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	drafts, err := h.generator.Generate(genCtx, copygen.Input{
		Account:  *account,
		Launch:   *launch,
		Strategy: strategy,
		Topic:    req.Topic,
		Count:    req.Count,
	})
	if err != nil {
		h.metrics.Inc("copy_generate", "provider_error")
		h.logger.WithError(err).WithFields(logging.Fields{
			"account_id": identity.AccountID,
			"launch_id":  req.LaunchID,
		}).Error("Copy generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Copy generation failed"})
		return
	}

	h.metrics.Inc("copy_generate", "success")
	c.JSON(http.StatusOK, models.GenerateCopyResponse{Drafts: drafts})
}
