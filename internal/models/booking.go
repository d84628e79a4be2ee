package models

import "time"

// BookingStatus is the workflow position of a room booking.
type BookingStatus string

const (
	BookingPendingCoordinator BookingStatus = "PENDING_COORDINATOR"
	BookingPendingHOD         BookingStatus = "PENDING_HOD"
	BookingApproved           BookingStatus = "APPROVED"
	BookingRejected           BookingStatus = "REJECTED"
)

// Terminal reports whether no further decisions are possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingApproved || s == BookingRejected
}

// RoomBooking is one request to use a room for an interval on a date.
// DivisionID is set iff the requester is a student.
type RoomBooking struct {
	ID                  string        `db:"id" json:"id"`
	RoomID              string        `db:"room_id" json:"room_id"`
	RequestedBy         string        `db:"requested_by" json:"requested_by"`
	RequesterRole       UserRole      `db:"requester_role" json:"requester_role"`
	DivisionID          *string       `db:"division_id" json:"division_id,omitempty"`
	Purpose             string        `db:"purpose" json:"purpose"`
	BookingDate         Date          `db:"booking_date" json:"booking_date"`
	StartTime           TimeOfDay     `db:"start_minute" json:"start_time"`
	EndTime             TimeOfDay     `db:"end_minute" json:"end_time"`
	Status              BookingStatus `db:"status" json:"status"`
	CoordinatorApproved bool          `db:"coordinator_approved" json:"coordinator_approved"`
	HODApproved         bool          `db:"hod_approved" json:"hod_approved"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
}

// BookingView joins a booking with the display fields used by queues and logs.
type BookingView struct {
	RoomBooking
	RoomNumber       string   `db:"room_number" json:"room_number"`
	RoomType         RoomType `db:"room_type" json:"room_type"`
	RequesterName    string   `db:"requester_username" json:"requested_by_username"`
	DivisionCourse   *Course  `db:"division_course" json:"-"`
	DivisionSemester *int     `db:"division_semester" json:"-"`
	DivisionLetter   *string  `db:"division_letter" json:"-"`
	Division         string   `db:"-" json:"division"`
}

// DivisionLabel renders the joined division or N/A for teacher bookings.
func (v BookingView) DivisionLabel() string {
	if v.DivisionCourse == nil || v.DivisionSemester == nil || v.DivisionLetter == nil {
		return "N/A"
	}
	return Cohort{Course: *v.DivisionCourse, Semester: *v.DivisionSemester, Letter: DivisionLetter(*v.DivisionLetter)}.String()
}

// BookingFilter constrains booking listings.
type BookingFilter struct {
	Statuses    []BookingStatus
	RequestedBy string
	// Cohort limits results to student bookings of one division.
	Cohort *Cohort
	// HODCourse limits results to student bookings of the course plus every
	// teacher booking.
	HODCourse *Course
	// BySchedule orders by date and start time instead of newest first.
	BySchedule bool
}
