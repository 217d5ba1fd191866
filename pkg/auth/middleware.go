package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"launchdeck/pkg/ctxkeys"
)

// Identity is the request-scoped caller identity constructed once by the auth
// middleware and read by handlers. It is carried through the Gin context as a
// value, never as package-level state.
type Identity struct {
	AccountID string
	Email     string
	Role      string
}

// IdentityFrom extracts the caller identity set by JWTAuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	value, ok := c.Get(string(ctxkeys.KeyIdentity))
	if !ok {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.Split(auth, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// JWTAuthMiddleware validates JWT bearer tokens and injects the caller
// identity into the request context.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
			c.Abort()
			return
		}

		claims, err := ValidateJWT(token, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(string(ctxkeys.KeyIdentity), Identity{
			AccountID: claims.AccountID,
			Email:     claims.Email,
			Role:      claims.Role,
		})
		c.Set(string(ctxkeys.KeyAccountID), claims.AccountID)
		c.Set(string(ctxkeys.KeyEmail), claims.Email)
		c.Set(string(ctxkeys.KeyRole), claims.Role)
		c.Set(string(ctxkeys.KeyAuthType), "jwt")
		c.Next()
	}
}

// DispatchAuthMiddleware guards the dispatch trigger with an optional shared
// secret. When no secret is configured the trigger is open; when one is
// configured a missing or mismatched bearer token is rejected before any
// dispatch work happens.
func DispatchAuthMiddleware(sharedSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sharedSecret == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization header"})
			c.Abort()
			return
		}

		if err := ValidateServiceToken(token, sharedSecret); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(string(ctxkeys.KeyAuthType), "service")
		c.Next()
	}
}
