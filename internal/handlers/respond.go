package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchdeck/internal/store"
	"launchdeck/pkg/auth"
)

// requireIdentity extracts the authenticated caller or aborts with 401. The
// auth middleware sets the identity; a missing one means the route was wired
// without it.
func requireIdentity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		c.Abort()
	}
	return identity, ok
}

// respondStoreError maps a storage failure to 404 or 500.
func respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
