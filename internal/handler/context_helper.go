package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/middleware"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
	"github.com/noah-isme/college-approvals-api/pkg/response"
)

// actorFromContext returns the resolved actor, writing 401 when absent.
func actorFromContext(c *gin.Context) (workflow.Actor, bool) {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		return workflow.Actor{}, false
	}
	actor, ok := value.(*workflow.Actor)
	if !ok || actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return workflow.Actor{}, false
	}
	return *actor, true
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
