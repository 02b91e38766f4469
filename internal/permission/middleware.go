package permission

import (
	"net/http"

	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
)

// RequireCapability gates a route on a single capability.
// Rules:
// - administrator roles and the wildcard sentinel bypass the check
// - a missing session is unauthorized, not forbidden
// Chain this after session.Require so the identity is in context.
func RequireCapability(e *Evaluator, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !e.Has(id.Capabilities, required, id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAnyCapability allows access if the caller holds any of required.
func RequireAnyCapability(e *Evaluator, required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := session.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !e.HasAny(id.Capabilities, required, id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
