package models

import "errors"

// Subject is taught in one course semester.
type Subject struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Course   Course `db:"course" json:"course"`
	Semester int    `db:"semester" json:"semester"`
}

// SubjectAssignment links a teacher to a subject for one division.
type SubjectAssignment struct {
	ID         string `db:"id" json:"id"`
	SubjectID  string `db:"subject_id" json:"subject_id"`
	TeacherID  string `db:"teacher_id" json:"teacher_id"`
	DivisionID string `db:"division_id" json:"division_id"`
}

// ValidateSubjectAssignment checks that subject and division belong to the same course semester.
func ValidateSubjectAssignment(subject Subject, division Division) error {
	if subject.Course != division.Course {
		return errors.New("subject and division course must match")
	}
	if subject.Semester != division.Semester {
		return errors.New("subject and division semester must match")
	}
	return nil
}
