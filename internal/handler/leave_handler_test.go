package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type leaveWorkflowMock struct {
	applied   *models.StudentLeave
	applyErr  error
	decideErr error
	mine      []models.LeaveView
	gotApply  dto.ApplyLeaveRequest
	gotDecide dto.DecisionRequest
	gotID     string
}

func (m *leaveWorkflowMock) Apply(ctx context.Context, actor workflow.Actor, req dto.ApplyLeaveRequest) (*models.StudentLeave, error) {
	m.gotApply = req
	return m.applied, m.applyErr
}

func (m *leaveWorkflowMock) Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.StudentLeave, error) {
	m.gotID, m.gotDecide = id, req
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return &models.StudentLeave{ID: id, Status: models.LeaveApproved}, nil
}

func (m *leaveWorkflowMock) ListPending(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error) {
	return nil, nil
}

func (m *leaveWorkflowMock) ListMine(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error) {
	return m.mine, nil
}

func TestLeaveHandlerApply(t *testing.T) {
	mock := &leaveWorkflowMock{applied: &models.StudentLeave{ID: "lv-1", Status: models.LeavePending}}
	h := NewLeaveHandler(mock)

	payload := mustJSON(t, dto.ApplyLeaveRequest{FromDate: "2025-03-12", ToDate: "2025-03-14", Reason: "Medical"})
	c, w := newGinContext(http.MethodPost, "/leaves", payload)
	withActor(c, studentActor())

	h.Apply(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Medical", mock.gotApply.Reason)
}

func TestLeaveHandlerApplyForbidden(t *testing.T) {
	mock := &leaveWorkflowMock{applyErr: appErrors.ErrForbidden}
	h := NewLeaveHandler(mock)

	payload := mustJSON(t, dto.ApplyLeaveRequest{FromDate: "2025-03-12", ToDate: "2025-03-12", Reason: "x"})
	c, w := newGinContext(http.MethodPost, "/leaves", payload)
	withActor(c, teacherActor(nil, nil))

	h.Apply(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeaveHandlerDecidePassesRemark(t *testing.T) {
	mock := &leaveWorkflowMock{}
	h := NewLeaveHandler(mock)
	cohort := models.Cohort{Course: models.CourseMCA, Semester: 1, Letter: models.DivisionA}

	c, w := newGinContext(http.MethodPost, "/leaves/lv-1/decision", mustJSON(t, dto.DecisionRequest{Action: "approve", Remark: "get well"}))
	c.Params = append(c.Params, ginParam("id", "lv-1"))
	withActor(c, teacherActor(&cohort, nil))

	h.Decide(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lv-1", mock.gotID)
	assert.Equal(t, "get well", mock.gotDecide.Remark)
}

func TestLeaveHandlerDecideInvalidAction(t *testing.T) {
	mock := &leaveWorkflowMock{decideErr: appErrors.ErrInvalidAction}
	h := NewLeaveHandler(mock)

	c, w := newGinContext(http.MethodPost, "/leaves/lv-1/decision", mustJSON(t, dto.DecisionRequest{Action: "maybe"}))
	c.Params = append(c.Params, ginParam("id", "lv-1"))
	withActor(c, teacherActor(nil, nil))

	h.Decide(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrInvalidAction.Code, env.Error.Code)
}

func TestLeaveHandlerMine(t *testing.T) {
	mock := &leaveWorkflowMock{mine: []models.LeaveView{{Division: "MCA - Sem 1 - A"}}}
	h := NewLeaveHandler(mock)

	c, w := newGinContext(http.MethodGet, "/leaves/mine", nil)
	withActor(c, studentActor())

	h.Mine(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeEnvelope(t, w).Meta["total"])
}
