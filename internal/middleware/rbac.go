package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
	"github.com/noah-isme/college-approvals-api/pkg/response"
)

// RequireRoles admits only actors whose directory role is listed. Scoped
// authority (coordinator, HOD) is checked by the services.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextActorKey)
		actor, ok := value.(*workflow.Actor)
		if !exists || !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
