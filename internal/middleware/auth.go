package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/jwt"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

const (
	ContextKeyUserID   = "user_id"
	ContextKeyTenantID = "tenant_id"
)

// Auth returns a middleware that enforces JWT authentication and stashes the
// caller's user and tenant ids on the context.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil || claims.TenantID == "" {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentTenantID extracts the authenticated tenant ID from context.
func CurrentTenantID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyTenantID)
	id, _ := v.(string)
	return id
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(header)
	}
	return strings.TrimSpace(c.Query("token"))
}
