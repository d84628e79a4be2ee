package models

import (
	"fmt"
	"strings"
)

// Course is a degree programme offered by the college.
type Course string

const (
	CourseMCA Course = "MCA"
	CourseMMS Course = "MMS"
)

// Valid reports whether the course is offered.
func (c Course) Valid() bool {
	return c == CourseMCA || c == CourseMMS
}

// DivisionLetter names a section within a semester.
type DivisionLetter string

const (
	DivisionA DivisionLetter = "A"
	DivisionB DivisionLetter = "B"
	DivisionC DivisionLetter = "C"
)

// Valid reports whether the letter is a known section.
func (l DivisionLetter) Valid() bool {
	return l == DivisionA || l == DivisionB || l == DivisionC
}

const (
	MinSemester = 1
	MaxSemester = 4
)

// Cohort is the (course, semester, letter) key shared by divisions and
// coordinator authority.
type Cohort struct {
	Course   Course         `json:"course"`
	Semester int            `json:"semester"`
	Letter   DivisionLetter `json:"division"`
}

// NewCohort validates and normalises a cohort key.
func NewCohort(course string, semester int, letter string) (Cohort, error) {
	c := Cohort{
		Course:   Course(strings.ToUpper(strings.TrimSpace(course))),
		Semester: semester,
		Letter:   DivisionLetter(strings.ToUpper(strings.TrimSpace(letter))),
	}
	if !c.Course.Valid() {
		return Cohort{}, fmt.Errorf("unknown course %q", course)
	}
	if semester < MinSemester || semester > MaxSemester {
		return Cohort{}, fmt.Errorf("semester must be between %d and %d", MinSemester, MaxSemester)
	}
	if !c.Letter.Valid() {
		return Cohort{}, fmt.Errorf("unknown division %q", letter)
	}
	return c, nil
}

// String renders the cohort the way it is shown in logs and exports.
func (c Cohort) String() string {
	return fmt.Sprintf("%s - Sem %d - %s", c.Course, c.Semester, c.Letter)
}

// Division identifies a cohort of students.
type Division struct {
	ID       string         `db:"id" json:"id"`
	Course   Course         `db:"course" json:"course"`
	Semester int            `db:"semester" json:"semester"`
	Letter   DivisionLetter `db:"letter" json:"division"`
}

// Cohort returns the division's addressing key.
func (d Division) Cohort() Cohort {
	return Cohort{Course: d.Course, Semester: d.Semester, Letter: d.Letter}
}
