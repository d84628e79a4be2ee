package workflow

import (
	"strings"

	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

// Action is an approver's decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ParseAction accepts approve or reject, ignoring case and surrounding spaces.
func ParseAction(raw string) (Action, error) {
	switch action := Action(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionApprove, ActionReject:
		return action, nil
	default:
		return "", appErrors.Clone(appErrors.ErrInvalidAction, "action must be approve or reject")
	}
}
