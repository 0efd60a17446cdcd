package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	redisc "github.com/korozcolt/archive-master-app-sub004/internal/pkg/redis"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/response"
)

// ActionRateLimit enforces a per-tenant hourly cap on mutating AI actions.
// limit <= 0 disables the middleware.
func ActionRateLimit(rc *redisc.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		tenantID := CurrentTenantID(c)
		if tenantID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		hour := time.Now().UTC().Format("2006010215")
		key := fmt.Sprintf("am:rate:actions:%s:%s", tenantID, hour)

		count, err := rc.IncrEx(ctx, key, 2*time.Hour)
		if err != nil {
			c.Next()
			return
		}

		if count > int64(limit) {
			c.Header("Retry-After", "3600")
			response.TooManyRequests(c, "hourly action limit reached")
			return
		}

		c.Next()
	}
}
