package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// ProfileHandler serves the account marketing profile.
type ProfileHandler struct {
	store   Storage
	logger  logging.Logger
	metrics *APIMetrics
}

func NewProfileHandler(store Storage, logger logging.Logger, metrics *APIMetrics) *ProfileHandler {
	return &ProfileHandler{store: store, logger: logger, metrics: metrics}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	account, err := h.store.GetAccount(c.Request.Context(), identity.AccountID)
	if err != nil {
		h.metrics.Inc("profile_get", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to load profile")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("profile_get", "success")
	c.JSON(http.StatusOK, account)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("profile_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	account, err := h.store.UpdateAccount(c.Request.Context(), identity.AccountID, req)
	if err != nil {
		h.metrics.Inc("profile_update", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to update profile")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("profile_update", "success")
	c.JSON(http.StatusOK, account)
}
