package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	"github.com/noah-isme/college-approvals-api/pkg/response"
)

type leaveWorkflow interface {
	Apply(ctx context.Context, actor workflow.Actor, req dto.ApplyLeaveRequest) (*models.StudentLeave, error)
	Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.StudentLeave, error)
	ListPending(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error)
	ListMine(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error)
}

// LeaveHandler exposes the student leave workflow.
type LeaveHandler struct {
	leaves leaveWorkflow
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(leaves leaveWorkflow) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// Apply godoc
// @Summary Apply for leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Param payload body dto.ApplyLeaveRequest true "Leave application"
// @Success 201 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Apply(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ApplyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid leave payload"))
		return
	}
	leave, err := h.leaves.Apply(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, leave)
}

// Decide godoc
// @Summary Approve or reject a pending leave
// @Tags Leaves
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body dto.DecisionRequest true "Decision with optional remark"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/decision [post]
func (h *LeaveHandler) Decide(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid decision payload"))
		return
	}
	leave, err := h.leaves.Decide(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave)
}

// Pending godoc
// @Summary Leaves awaiting the coordinator
// @Tags Leaves
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaves/pending [get]
func (h *LeaveHandler) Pending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.leaves.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Mine godoc
// @Summary The caller's leave applications
// @Tags Leaves
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaves/mine [get]
func (h *LeaveHandler) Mine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.leaves.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}
