package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func TestTeacherRowAuthority(t *testing.T) {
	cases := []struct {
		name    string
		row     TeacherRow
		wantErr error
		coord   bool
		hod     bool
	}{
		{name: "plain teacher", row: TeacherRow{}},
		{
			name:  "coordinator",
			row:   TeacherRow{IsBatchCoordinator: true, CoordinatorCourse: strPtr("mca"), CoordinatorSemester: intPtr(1), CoordinatorDivision: strPtr("a")},
			coord: true,
		},
		{
			name:    "coordinator missing division",
			row:     TeacherRow{IsBatchCoordinator: true, CoordinatorCourse: strPtr("MCA"), CoordinatorSemester: intPtr(1)},
			wantErr: ErrCoordinatorScopeIncomplete,
		},
		{
			name:    "scope without flag",
			row:     TeacherRow{CoordinatorCourse: strPtr("MCA")},
			wantErr: ErrCoordinatorScopeWithoutRole,
		},
		{name: "hod", row: TeacherRow{IsHOD: true, HODCourse: strPtr("MMS")}, hod: true},
		{name: "hod missing course", row: TeacherRow{IsHOD: true}, wantErr: ErrHODCourseMissing},
		{name: "course without hod", row: TeacherRow{HODCourse: strPtr("MCA")}, wantErr: ErrHODCourseWithoutRole},
		{
			name:  "both",
			row:   TeacherRow{IsBatchCoordinator: true, CoordinatorCourse: strPtr("MCA"), CoordinatorSemester: intPtr(2), CoordinatorDivision: strPtr("B"), IsHOD: true, HODCourse: strPtr("MCA")},
			coord: true,
			hod:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authority, err := tc.row.Authority()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.coord, authority.IsCoordinator())
			assert.Equal(t, tc.hod, authority.IsHOD())
		})
	}
}

func TestTeacherRowCoordinatorCohortNormalised(t *testing.T) {
	row := TeacherRow{IsBatchCoordinator: true, CoordinatorCourse: strPtr("mca"), CoordinatorSemester: intPtr(1), CoordinatorDivision: strPtr("a")}
	teacher, err := row.Teacher()
	require.NoError(t, err)
	cohort, ok := teacher.Authority.Coordinator()
	require.True(t, ok)
	assert.Equal(t, Cohort{Course: CourseMCA, Semester: 1, Letter: DivisionA}, cohort)
	assert.Equal(t, "MCA - Sem 1 - A", cohort.String())
}

func TestNewCohortRejectsUnknownValues(t *testing.T) {
	_, err := NewCohort("BBA", 1, "A")
	assert.Error(t, err)
	_, err = NewCohort("MCA", 5, "A")
	assert.Error(t, err)
	_, err = NewCohort("MCA", 1, "D")
	assert.Error(t, err)
}

func TestDateRoundTrip(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-08"`), &d))
	assert.Equal(t, NewDate(2024, time.January, 8), d)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-08"`, string(out))

	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", value)

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 1, 8, 0, 0, 0, 0, time.FixedZone("IST", 19800))))
	assert.Equal(t, "2024-01-08", scanned.String())

	assert.Error(t, json.Unmarshal([]byte(`"08/01/2024"`), &d))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), tod)
	assert.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("17:05:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(17*60+5), tod)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	for _, raw := range []string{"10:00:30", "11:00:59"} {
		_, err = ParseTimeOfDay(raw)
		assert.Error(t, err, raw)
	}

	var fromJSON TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"11:00"`), &fromJSON))
	assert.Equal(t, TimeOfDay(660), fromJSON)
}

func TestBookingViewDivisionLabel(t *testing.T) {
	assert.Equal(t, "N/A", BookingView{}.DivisionLabel())

	course := CourseMMS
	sem := 3
	letter := "C"
	view := BookingView{DivisionCourse: &course, DivisionSemester: &sem, DivisionLetter: &letter}
	assert.Equal(t, "MMS - Sem 3 - C", view.DivisionLabel())
	assert.Equal(t, "Seminar Hall", RoomTypeSeminarHall.Label())
}

func TestValidateSubjectAssignment(t *testing.T) {
	div := Division{Course: CourseMCA, Semester: 1, Letter: DivisionA}
	assert.NoError(t, ValidateSubjectAssignment(Subject{Course: CourseMCA, Semester: 1}, div))
	assert.Error(t, ValidateSubjectAssignment(Subject{Course: CourseMMS, Semester: 1}, div))
	assert.Error(t, ValidateSubjectAssignment(Subject{Course: CourseMCA, Semester: 2}, div))
}
