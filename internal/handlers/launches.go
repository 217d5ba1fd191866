package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// LaunchHandler serves launch CRUD. A launch always belongs to one product
// of the same account.
type LaunchHandler struct {
	store   Storage
	logger  logging.Logger
	metrics *APIMetrics
}

func NewLaunchHandler(store Storage, logger logging.Logger, metrics *APIMetrics) *LaunchHandler {
	return &LaunchHandler{store: store, logger: logger, metrics: metrics}
}

func (h *LaunchHandler) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	launches, err := h.store.ListLaunches(c.Request.Context(), identity.AccountID)
	if err != nil {
		h.metrics.Inc("launches_list", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to list launches")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launches_list", "success")
	c.JSON(http.StatusOK, gin.H{"launches": launches})
}

func (h *LaunchHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CreateLaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("launches_create", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	launch, err := h.store.CreateLaunch(c.Request.Context(), identity.AccountID, req)
	if err != nil {
		h.metrics.Inc("launches_create", "error")
		h.logger.WithError(err).WithFields(logging.Fields{
			"account_id": identity.AccountID,
			"product_id": req.ProductID,
		}).Error("Failed to create launch")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launches_create", "success")
	c.JSON(http.StatusCreated, launch)
}

func (h *LaunchHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	launch, err := h.store.GetLaunch(c.Request.Context(), identity.AccountID, c.Param("id"))
	if err != nil {
		h.metrics.Inc("launches_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launches_get", "success")
	c.JSON(http.StatusOK, launch)
}

func (h *LaunchHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateLaunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("launches_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Status != nil && !models.ValidLaunchStatus(*req.Status) {
		h.metrics.Inc("launches_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid launch status"})
		return
	}

	launch, err := h.store.UpdateLaunch(c.Request.Context(), identity.AccountID, c.Param("id"), req)
	if err != nil {
		h.metrics.Inc("launches_update", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launches_update", "success")
	c.JSON(http.StatusOK, launch)
}

func (h *LaunchHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.store.DeleteLaunch(c.Request.Context(), identity.AccountID, c.Param("id")); err != nil {
		h.metrics.Inc("launches_delete", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("launches_delete", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Launch deleted"})
}
