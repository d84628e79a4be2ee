package workflow

import (
	"strings"

	"github.com/noah-isme/college-approvals-api/internal/models"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

// BookingStep is one allowed edge of the booking graph together with the
// audit flags it sets.
type BookingStep struct {
	From                   models.BookingStatus
	Action                 Action
	To                     models.BookingStatus
	SetCoordinatorApproved bool
	SetHODApproved         bool
}

var bookingTransitions = []BookingStep{
	{From: models.BookingPendingCoordinator, Action: ActionApprove, To: models.BookingPendingHOD, SetCoordinatorApproved: true},
	{From: models.BookingPendingCoordinator, Action: ActionReject, To: models.BookingRejected},
	{From: models.BookingPendingHOD, Action: ActionApprove, To: models.BookingApproved, SetHODApproved: true},
	{From: models.BookingPendingHOD, Action: ActionReject, To: models.BookingRejected},
}

// BookingTransition looks up the edge for (from, action).
func BookingTransition(from models.BookingStatus, action Action) (BookingStep, error) {
	for _, step := range bookingTransitions {
		if step.From == from && step.Action == action {
			return step, nil
		}
	}
	return BookingStep{}, appErrors.Clone(appErrors.ErrInvalidTransition, "booking is already "+strings.ToLower(string(from)))
}

// InitialBookingStatus picks the first stage for a requester. Teacher requests
// skip the coordinator stage.
func InitialBookingStatus(role models.UserRole) (models.BookingStatus, error) {
	switch role {
	case models.RoleStudent:
		return models.BookingPendingCoordinator, nil
	case models.RoleTeacher:
		return models.BookingPendingHOD, nil
	default:
		return "", appErrors.Clone(appErrors.ErrForbidden, "only students and teachers can request rooms")
	}
}

// ValidateBookingWindow checks end > start within one day.
func ValidateBookingWindow(start, end models.TimeOfDay) error {
	if !start.Valid() || !end.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "times must be within the day")
	}
	if end <= start {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	return nil
}

// AuthorizeBookingDecision checks that the actor holds the authority for the
// booking's current stage. division is nil for teacher bookings, which any
// HOD may decide.
func AuthorizeBookingDecision(a Actor, booking models.RoomBooking, division *models.Division) error {
	coordinator := division != nil && CanActAsCoordinatorFor(a, *division)
	var hod bool
	if division != nil {
		hod = CanActAsHODFor(a, division.Course)
	} else {
		hod = IsAnyHOD(a)
	}

	var allowed bool
	switch booking.Status {
	case models.BookingPendingCoordinator:
		allowed = coordinator
	case models.BookingPendingHOD:
		allowed = hod
	default:
		// terminal bookings: any approver in scope gets the transition error
		allowed = coordinator || hod
	}
	if !allowed {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized to decide this booking")
	}
	return nil
}

// VisibleInQueue reports whether a pending booking belongs in the actor's
// approval queue.
func VisibleInQueue(a Actor, booking models.RoomBooking, division *models.Division) bool {
	if booking.Status.Terminal() {
		return false
	}
	return AuthorizeBookingDecision(a, booking, division) == nil
}
