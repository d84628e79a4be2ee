package models

import (
	"errors"
	"strings"
)

// Authority holds the scoped approval capabilities of a teacher. Each part is
// all-or-nothing: a coordinator scope is a complete cohort and an HOD scope is
// a single course. The zero value grants nothing.
type Authority struct {
	coordinator *Cohort
	hod         *Course
}

// NewAuthority builds an authority from already validated scopes; nil means
// the capability is absent.
func NewAuthority(coordinator *Cohort, hod *Course) Authority {
	var a Authority
	if coordinator != nil {
		c := *coordinator
		a.coordinator = &c
	}
	if hod != nil {
		h := *hod
		a.hod = &h
	}
	return a
}

// Coordinator returns the cohort the teacher coordinates.
func (a Authority) Coordinator() (Cohort, bool) {
	if a.coordinator == nil {
		return Cohort{}, false
	}
	return *a.coordinator, true
}

// HOD returns the course the teacher heads.
func (a Authority) HOD() (Course, bool) {
	if a.hod == nil {
		return "", false
	}
	return *a.hod, true
}

// IsCoordinator reports whether a coordinator scope is attached.
func (a Authority) IsCoordinator() bool { return a.coordinator != nil }

// IsHOD reports whether an HOD scope is attached.
func (a Authority) IsHOD() bool { return a.hod != nil }

var (
	ErrCoordinatorScopeIncomplete  = errors.New("batch coordinator must have course, semester and division")
	ErrCoordinatorScopeWithoutRole = errors.New("coordinator fields allowed only if teacher is batch coordinator")
	ErrHODCourseMissing            = errors.New("HOD must be assigned a course")
	ErrHODCourseWithoutRole        = errors.New("only HOD can have hod course")
)

// TeacherRow mirrors the flat teachers table.
type TeacherRow struct {
	ID                  string  `db:"id"`
	UserID              string  `db:"user_id"`
	Qualification       string  `db:"qualification"`
	Department          string  `db:"department"`
	Position            string  `db:"position"`
	IsBatchCoordinator  bool    `db:"is_batch_coordinator"`
	CoordinatorCourse   *string `db:"coordinator_course"`
	CoordinatorSemester *int    `db:"coordinator_semester"`
	CoordinatorDivision *string `db:"coordinator_division"`
	IsHOD               bool    `db:"is_hod"`
	HODCourse           *string `db:"hod_course"`
}

// Authority validates the flat columns and folds them into an Authority.
func (r TeacherRow) Authority() (Authority, error) {
	var coordinator *Cohort
	hasCourse := r.CoordinatorCourse != nil && strings.TrimSpace(*r.CoordinatorCourse) != ""
	hasSemester := r.CoordinatorSemester != nil && *r.CoordinatorSemester != 0
	hasDivision := r.CoordinatorDivision != nil && strings.TrimSpace(*r.CoordinatorDivision) != ""
	if r.IsBatchCoordinator {
		if !hasCourse || !hasSemester || !hasDivision {
			return Authority{}, ErrCoordinatorScopeIncomplete
		}
		cohort, err := NewCohort(*r.CoordinatorCourse, *r.CoordinatorSemester, *r.CoordinatorDivision)
		if err != nil {
			return Authority{}, err
		}
		coordinator = &cohort
	} else if hasCourse || hasSemester || hasDivision {
		return Authority{}, ErrCoordinatorScopeWithoutRole
	}

	var hod *Course
	hasHODCourse := r.HODCourse != nil && strings.TrimSpace(*r.HODCourse) != ""
	switch {
	case r.IsHOD && !hasHODCourse:
		return Authority{}, ErrHODCourseMissing
	case !r.IsHOD && hasHODCourse:
		return Authority{}, ErrHODCourseWithoutRole
	case r.IsHOD:
		course := Course(strings.ToUpper(strings.TrimSpace(*r.HODCourse)))
		if !course.Valid() {
			return Authority{}, errors.New("unknown HOD course " + *r.HODCourse)
		}
		hod = &course
	}

	return NewAuthority(coordinator, hod), nil
}

// Teacher converts the row into the domain record.
func (r TeacherRow) Teacher() (*Teacher, error) {
	authority, err := r.Authority()
	if err != nil {
		return nil, err
	}
	return &Teacher{
		ID:            r.ID,
		UserID:        r.UserID,
		Qualification: r.Qualification,
		Department:    r.Department,
		Position:      r.Position,
		Authority:     authority,
	}, nil
}

// Teacher is a faculty member with optional approval authority.
type Teacher struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Qualification string    `json:"qualification"`
	Department    string    `json:"department"`
	Position      string    `json:"position"`
	Authority     Authority `json:"-"`
}
