package workflow

import "github.com/noah-isme/college-approvals-api/internal/models"

// CanRequestRoom reports whether the actor may submit a room booking.
func CanRequestRoom(a Actor) bool {
	return a.Role == models.RoleStudent || a.Role == models.RoleTeacher
}

// CanActAsCoordinatorFor reports whether the actor coordinates exactly this division.
func CanActAsCoordinatorFor(a Actor, division models.Division) bool {
	if a.Role != models.RoleTeacher {
		return false
	}
	cohort, ok := a.Authority().Coordinator()
	return ok && cohort == division.Cohort()
}

// CanActAsHODFor reports whether the actor heads the given course.
func CanActAsHODFor(a Actor, course models.Course) bool {
	if a.Role != models.RoleTeacher {
		return false
	}
	hod, ok := a.Authority().HOD()
	return ok && hod == course
}

// IsAnyHOD reports whether the actor heads some course.
func IsAnyHOD(a Actor) bool {
	return a.Role == models.RoleTeacher && a.Authority().IsHOD()
}

// CanApplyLeave reports whether the actor may apply for leave.
func CanApplyLeave(a Actor) bool {
	return a.Role == models.RoleStudent
}

// CanViewLeaveLog allows coordinators and HODs to read the approved leave log.
func CanViewLeaveLog(a Actor) bool {
	if a.Role != models.RoleTeacher {
		return false
	}
	authority := a.Authority()
	return authority.IsCoordinator() || authority.IsHOD()
}

// CanManageDirectory allows administrators to maintain rooms and divisions.
func CanManageDirectory(a Actor) bool {
	return a.Role == models.RoleAdmin
}
