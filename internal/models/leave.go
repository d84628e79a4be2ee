package models

import "time"

// LeaveStatus is the workflow position of a student leave.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// Terminal reports whether the leave has been decided.
func (s LeaveStatus) Terminal() bool {
	return s == LeaveApproved || s == LeaveRejected
}

// StudentLeave is a student's request for leave across a date range.
type StudentLeave struct {
	ID                string      `db:"id" json:"id"`
	StudentID         string      `db:"student_id" json:"student_id"`
	DivisionID        string      `db:"division_id" json:"division_id"`
	Reason            string      `db:"reason" json:"reason"`
	FromDate          Date        `db:"from_date" json:"from_date"`
	ToDate            Date        `db:"to_date" json:"to_date"`
	DocumentRef       *string     `db:"document_ref" json:"document_ref,omitempty"`
	Status            LeaveStatus `db:"status" json:"status"`
	CoordinatorRemark *string     `db:"coordinator_remark" json:"coordinator_remark,omitempty"`
	DecidedBy         *string     `db:"decided_by" json:"decided_by,omitempty"`
	AppliedAt         time.Time   `db:"applied_at" json:"applied_at"`
	DecisionAt        *time.Time  `db:"decision_at" json:"decision_at,omitempty"`
}

// LeaveView joins a leave with student and division display fields.
type LeaveView struct {
	StudentLeave
	StudentUsername  string         `db:"student_username" json:"student"`
	DivisionCourse   Course         `db:"division_course" json:"-"`
	DivisionSemester int            `db:"division_semester" json:"-"`
	DivisionLetter   DivisionLetter `db:"division_letter" json:"-"`
	Division         string         `db:"-" json:"division"`
}

// DivisionLabel renders the leave's division.
func (v LeaveView) DivisionLabel() string {
	return Cohort{Course: v.DivisionCourse, Semester: v.DivisionSemester, Letter: v.DivisionLetter}.String()
}

// LeaveFilter constrains leave listings.
type LeaveFilter struct {
	Statuses  []LeaveStatus
	StudentID string
	Cohort    *Cohort
	// ByDecision orders by decision time, newest first, instead of by
	// application time.
	ByDecision bool
}
