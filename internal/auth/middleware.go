package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eduboost-lms/analytics-service/internal/utils"
)

// Context keys populated by the middleware for downstream handlers.
const (
	ContextIdentityKey = "identity"
	ContextUserIDKey   = "user_id"
)

// RequireRole verifies the bearer token and checks the caller's role against
// the policy table for the given resource. Missing or invalid tokens get 401,
// a policy denial gets 403. Both carry the standard error envelope.
func RequireRole(verifier TokenVerifier, authorizer Authorizer, resource string, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Authentication required",
			})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Warn("Rejected invalid session token",
				"path", c.Request.URL.Path,
				"remote_addr", c.ClientIP(),
				"error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or expired session",
			})
			return
		}

		if !authorizer.Allowed(identity.Role, resource) {
			logger.Warn("Denied access by policy",
				"path", c.Request.URL.Path,
				"user_id", identity.UID,
				"role", identity.Role,
				"resource", resource)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Insufficient permissions",
			})
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Set(ContextUserIDKey, identity.UID)
		c.Next()
	}
}

// IdentityFromContext returns the verified caller, if the auth middleware ran.
func IdentityFromContext(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
