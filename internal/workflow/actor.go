package workflow

import "github.com/noah-isme/college-approvals-api/internal/models"

// Actor is an authenticated user resolved against the directory.
type Actor struct {
	UserID   string
	Username string
	Role     models.UserRole
	// Teacher is set for TEACHER actors.
	Teacher *models.Teacher
	// Student and Division are set for STUDENT actors; Division is the
	// student's current division.
	Student  *models.Student
	Division *models.Division
}

// Authority returns the teacher's scoped authority, empty for non-teachers.
func (a Actor) Authority() models.Authority {
	if a.Role != models.RoleTeacher || a.Teacher == nil {
		return models.Authority{}
	}
	return a.Teacher.Authority
}
