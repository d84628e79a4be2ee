package workflow

import (
	"strings"

	"github.com/noah-isme/college-approvals-api/internal/models"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

var leaveTransitions = map[models.LeaveStatus]map[Action]models.LeaveStatus{
	models.LeavePending: {
		ActionApprove: models.LeaveApproved,
		ActionReject:  models.LeaveRejected,
	},
}

// LeaveTransition returns the target status for (from, action).
func LeaveTransition(from models.LeaveStatus, action Action) (models.LeaveStatus, error) {
	if to, ok := leaveTransitions[from][action]; ok {
		return to, nil
	}
	return "", appErrors.Clone(appErrors.ErrInvalidTransition, "leave is already "+strings.ToLower(string(from)))
}

// ValidateLeaveRange requires to >= from.
func ValidateLeaveRange(from, to models.Date) error {
	if to.Before(from) {
		return appErrors.Clone(appErrors.ErrValidation, "to date cannot be before from date")
	}
	return nil
}

// AuthorizeLeaveDecision requires a coordinator scoped to the leave's division.
func AuthorizeLeaveDecision(a Actor, division models.Division) error {
	if !CanActAsCoordinatorFor(a, division) {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized to decide this leave")
	}
	return nil
}
