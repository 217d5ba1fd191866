package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// ProductHandler serves product CRUD.
type ProductHandler struct {
	store   Storage
	logger  logging.Logger
	metrics *APIMetrics
}

func NewProductHandler(store Storage, logger logging.Logger, metrics *APIMetrics) *ProductHandler {
	return &ProductHandler{store: store, logger: logger, metrics: metrics}
}

func (h *ProductHandler) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	products, err := h.store.ListProducts(c.Request.Context(), identity.AccountID)
	if err != nil {
		h.metrics.Inc("products_list", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to list products")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("products_list", "success")
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("products_create", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	product, err := h.store.CreateProduct(c.Request.Context(), identity.AccountID, req)
	if err != nil {
		h.metrics.Inc("products_create", "error")
		h.logger.WithError(err).WithField("account_id", identity.AccountID).Error("Failed to create product")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("products_create", "success")
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(c.Request.Context(), identity.AccountID, c.Param("id"))
	if err != nil {
		h.metrics.Inc("products_get", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("products_get", "success")
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.Inc("products_update", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	product, err := h.store.UpdateProduct(c.Request.Context(), identity.AccountID, c.Param("id"), req)
	if err != nil {
		h.metrics.Inc("products_update", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("products_update", "success")
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), identity.AccountID, c.Param("id")); err != nil {
		h.metrics.Inc("products_delete", "error")
		respondStoreError(c, err)
		return
	}

	h.metrics.Inc("products_delete", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
