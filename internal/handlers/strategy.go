package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// StrategyHandler serves education strategies: one account baseline plus an
// optional override per launch.
type StrategyHandler struct {
	store   Storage
	logger  logging.Logger
	metrics *APIMetrics
}

func NewStrategyHandler(store Storage, logger logging.Logger, metrics *APIMetrics) *StrategyHandler {
	return &StrategyHandler{store: store, logger: logger, metrics: metrics}
}

// GetBaseline returns the account-wide strategy.
func (h *StrategyHandler) GetBaseline(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	strategy, err := h.store.GetStrategy(c.Request.Context(), identity.AccountID, nil)
	if err != nil {
		h.metrics.Inc("strategy_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("strategy_get", "success")
	c.JSON(http.StatusOK, strategy)
}

// UpdateBaseline upserts the account-wide strategy.
func (h *StrategyHandler) UpdateBaseline(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("strategy_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	strategy, err := h.store.UpsertStrategy(c.Request.Context(), identity.AccountID, nil, req)
	if err != nil {
		h.metrics.Inc("strategy_update", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to update strategy")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("strategy_update", "success")
	c.JSON(http.StatusOK, strategy)
}

// GetForLaunch returns the launch-specific strategy. The launch must belong
// to the caller.
func (h *StrategyHandler) GetForLaunch(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	launchID := c.Param("id")
	if _, err := h.store.GetLaunch(c.Request.Context(), identity.AccountID, launchID); err != nil {
		h.metrics.Inc("launch_strategy_get", "error")
		respondStoreError(c, err)
		return
	}

	strategy, err := h.store.GetStrategy(c.Request.Context(), identity.AccountID, &launchID)
	if err != nil {
		h.metrics.Inc("launch_strategy_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launch_strategy_get", "success")
	c.JSON(http.StatusOK, strategy)
}

// UpdateForLaunch upserts the launch-specific strategy.
func (h *StrategyHandler) UpdateForLaunch(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	launchID := c.Param("id")
	if _, err := h.store.GetLaunch(c.Request.Context(), identity.AccountID, launchID); err != nil {
		h.metrics.Inc("launch_strategy_update", "error")
		respondStoreError(c, err)
		return
	}

	var req models.UpdateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("launch_strategy_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	strategy, err := h.store.UpsertStrategy(c.Request.Context(), identity.AccountID, &launchID, req)
	if err != nil {
		h.metrics.Inc("launch_strategy_update", "error")
		h.logger.WithError(err).WithFields(logging.Fields{
			"account_id": identity.AccountID,
			"launch_id":  launchID,
		}).Error("Failed to update launch strategy")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launch_strategy_update", "success")
	c.JSON(http.StatusOK, strategy)
}
