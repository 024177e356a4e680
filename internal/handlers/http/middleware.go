package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey is where the identity middleware stores the caller's id.
const userIDKey = "userID"

// RequireUser reads the caller identity established by the upstream auth
// proxy from the X-User-ID header. Authentication itself happens before
// requests reach this service.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
