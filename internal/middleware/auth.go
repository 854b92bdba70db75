package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/pkg/response"
)

// JWTAuth resolves the bearer credential through gate and stores the caller
// identity on the context.
func JWTAuth(gate auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		identity, err := gate.Resolve(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		auth.SetIdentity(c, identity)
		c.Next()
	}
}
