package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Require rejects requests without a valid session and injects the decoded
// identity into the request context. It performs no capability checks;
// those belong to internal/permission.
func Require(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := m.Current(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))

		// Also store on gin context for handler convenience.
		c.Set("operator_id", id.ID)
		c.Set("role", id.Role)

		c.Next()
	}
}
