package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

func newLeaveFixture() (*LeaveService, *leaveStoreStub, *invalidatorStub) {
	divisions := newDivisionStub(divisionA, divisionB)
	store := newLeaveStoreStub(divisions)
	invalidator := &invalidatorStub{}
	svc := NewLeaveService(store, divisions, &auditStub{}, invalidator, nil, nil, WithClock(fixedClock))
	return svc, store, invalidator
}

func TestLeaveServiceEndToEnd(t *testing.T) {
	svc, _, invalidator := newLeaveFixture()
	student := studentActor("u-student", divisionA)
	coordinator := coordinatorOf("u-coord-a", divisionA)
	ctx := context.Background()

	_, err := svc.Apply(ctx, student, dto.ApplyLeaveRequest{FromDate: "2024-01-10", ToDate: "2024-01-08", Reason: "fever"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	leave, err := svc.Apply(ctx, student, dto.ApplyLeaveRequest{FromDate: "2024-01-08", ToDate: "2024-01-10", Reason: "fever"})
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, leave.Status)
	assert.Equal(t, divisionA.ID, leave.DivisionID)
	assert.Equal(t, fixedNow, leave.AppliedAt)
	assert.Nil(t, leave.DecisionAt)

	decided, err := svc.Decide(ctx, coordinator, leave.ID, dto.DecisionRequest{Action: "approve", Remark: "ok"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, decided.Status)
	require.NotNil(t, decided.DecisionAt)
	assert.Equal(t, fixedNow, *decided.DecisionAt)
	require.NotNil(t, decided.CoordinatorRemark)
	assert.Equal(t, "ok", *decided.CoordinatorRemark)
	assert.Equal(t, 1, invalidator.leaveCalls)

	_, err = svc.Decide(ctx, coordinator, leave.ID, dto.DecisionRequest{Action: "reject"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestLeaveServiceSingleDayAndEmptyRemark(t *testing.T) {
	svc, _, invalidator := newLeaveFixture()
	student := studentActor("u-student", divisionA)
	coordinator := coordinatorOf("u-coord-a", divisionA)
	ctx := context.Background()

	leave, err := svc.Apply(ctx, student, dto.ApplyLeaveRequest{FromDate: "2024-02-01", ToDate: "2024-02-01", Reason: "exam"})
	require.NoError(t, err)

	decided, err := svc.Decide(ctx, coordinator, leave.ID, dto.DecisionRequest{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveRejected, decided.Status)
	require.NotNil(t, decided.CoordinatorRemark)
	assert.Empty(t, *decided.CoordinatorRemark)
	assert.Equal(t, 0, invalidator.leaveCalls)
}

func TestLeaveServiceAuthorization(t *testing.T) {
	svc, _, _ := newLeaveFixture()
	student := studentActor("u-student", divisionA)
	ctx := context.Background()

	_, err := svc.Apply(ctx, teacherActor("u-teacher", nil, nil), dto.ApplyLeaveRequest{FromDate: "2024-01-08", ToDate: "2024-01-09", Reason: "x"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	leave, err := svc.Apply(ctx, student, dto.ApplyLeaveRequest{FromDate: "2024-01-08", ToDate: "2024-01-09", Reason: "trip"})
	require.NoError(t, err)

	for name, actor := range map[string]workflow.Actor{
		"other division": coordinatorOf("u-coord-b", divisionB),
		"hod":            hodOf("u-hod", models.CourseMCA),
		"student":        studentActor("u-peer", divisionA),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Decide(ctx, actor, leave.ID, dto.DecisionRequest{Action: "approve"})
			assert.ErrorIs(t, err, appErrors.ErrForbidden)
		})
	}

	_, err = svc.Decide(ctx, coordinatorOf("u-coord-a", divisionA), leave.ID, dto.DecisionRequest{Action: "later"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidAction)
}

func TestLeaveServiceQueues(t *testing.T) {
	svc, store, _ := newLeaveFixture()
	ctx := context.Background()

	_, err := svc.Apply(ctx, studentActor("u-a", divisionA), dto.ApplyLeaveRequest{FromDate: "2024-01-08", ToDate: "2024-01-09", Reason: "a"})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, studentActor("u-b", divisionB), dto.ApplyLeaveRequest{FromDate: "2024-01-08", ToDate: "2024-01-09", Reason: "b"})
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx, coordinatorOf("u-coord-a", divisionA))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "MCA - Sem 1 - A", pending[0].Division)

	pending, err = svc.ListPending(ctx, hodOf("u-hod", models.CourseMCA))
	require.NoError(t, err)
	assert.Empty(t, pending)

	mine, err := svc.ListMine(ctx, studentActor("u-b", divisionB))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "b", mine[0].Reason)
	assert.Equal(t, "stu-u-b", store.filters[len(store.filters)-1].StudentID)

	_, err = svc.ListMine(ctx, coordinatorOf("u-coord-a", divisionA))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
