package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/service"
	"github.com/noah-isme/college-approvals-api/pkg/middleware/requestid"
)

// ClientMeta records who sent a request (address, user agent and request id)
// on its context. Booking, leave and room audit entries read it back.
func ClientMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithRequestMeta(c.Request.Context(), service.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			RequestID: requestid.FromGin(c),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
