package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"driftline/internal/transport/httpdto"
)

const ctxUserIDKey = "auth_user_id"

// AuthMiddleware validates the bearer token and stashes the caller's user
// id on the request context.
func AuthMiddleware(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.ParseToken(extractBearer(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}
		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients in browsers cannot set headers; accept a query
	// token for the realtime endpoint.
	return c.Query("token")
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
