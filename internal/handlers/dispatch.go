package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// DispatchHandler exposes the dispatch trigger. Authentication happens in
// DispatchAuthMiddleware before this handler runs, so a rejected trigger
// never touches the store.
type DispatchHandler struct {
	runner  DispatchRunner
	logger  logging.Logger
	metrics *APIMetrics
}

func NewDispatchHandler(runner DispatchRunner, logger logging.Logger, metrics *APIMetrics) *DispatchHandler {
	return &DispatchHandler{runner: runner, logger: logger, metrics: metrics}
}

// Trigger runs one dispatch pass at the current time.
func (h *DispatchHandler) Trigger(c *gin.Context) {
	summary, err := h.runner.RunPass(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.metrics.Inc("dispatch_trigger", "error")
		h.logger.WithError(err).Error("Dispatch pass failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Dispatch pass failed"})
		return
	}

	h.metrics.Inc("dispatch_trigger", "success")
	c.JSON(http.StatusOK, models.DispatchResponse{
		Message:         "Dispatch complete",
		SuccessfulPosts: summary.SuccessfulPosts,
		FailedPosts:     summary.FailedPosts,
		Processed:       summary.Processed,
	})
}
