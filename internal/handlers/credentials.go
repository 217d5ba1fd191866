package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// CredentialsHandler manages the posting API secrets. Secrets are write-only
// through this surface; reads report presence booleans.
type CredentialsHandler struct {
	store   Storage
	logger  logging.Logger
	metrics *APIMetrics
}

func NewCredentialsHandler(store Storage, logger logging.Logger, metrics *APIMetrics) *CredentialsHandler {
	return &CredentialsHandler{store: store, logger: logger, metrics: metrics}
}

func (h *CredentialsHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	status, err := h.store.CredentialsStatus(c.Request.Context(), identity.AccountID)
	if err != nil {
		h.metrics.Inc("credentials_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("credentials_get", "success")
	c.JSON(http.StatusOK, status)
}

func (h *CredentialsHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("credentials_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "All four credentials are required"})
		return
	}

	if err := h.store.UpsertCredentials(c.Request.Context(), identity.AccountID, req); err != nil {
		h.metrics.Inc("credentials_update", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to store credentials")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("credentials_update", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Credentials updated"})
}
