package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/repository"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type bookingStore interface {
	CreateIfNoClash(ctx context.Context, booking *models.RoomBooking) error
	GetByID(ctx context.Context, id string) (*models.RoomBooking, error)
	ListViews(ctx context.Context, filter models.BookingFilter) ([]models.BookingView, error)
	ApplyTransition(ctx context.Context, params repository.BookingTransitionParams) (*models.RoomBooking, error)
}

type roomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// bookingLogInvalidator drops cached approved-booking reports.
type bookingLogInvalidator interface {
	InvalidateBookingLog(ctx context.Context) error
}

// BookingService runs the room booking workflow.
type BookingService struct {
	bookings  bookingStore
	rooms     roomReader
	divisions divisionReader
	audit     auditLogger
	reports   bookingLogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	opts      serviceOptions
}

// NewBookingService constructs a BookingService. audit and reports may be nil.
func NewBookingService(bookings bookingStore, rooms roomReader, divisions divisionReader, audit auditLogger, reports bookingLogInvalidator, validate *validator.Validate, logger *zap.Logger, opts ...Option) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{
		bookings:  bookings,
		rooms:     rooms,
		divisions: divisions,
		audit:     audit,
		reports:   reports,
		validator: validate,
		logger:    logger,
		opts:      buildOptions(opts),
	}
}

// Create submits a room booking. Students book for their own division and
// enter the coordinator stage; teachers go straight to the HOD.
func (s *BookingService) Create(ctx context.Context, actor workflow.Actor, req dto.CreateBookingRequest) (*models.RoomBooking, error) {
	if !workflow.CanRequestRoom(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students and teachers can request rooms")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "date must be YYYY-MM-DD")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, validationError(err, "start_time must be HH:MM")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, validationError(err, "end_time must be HH:MM")
	}
	if err := workflow.ValidateBookingWindow(start, end); err != nil {
		return nil, err
	}
	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "purpose is required")
	}

	var divisionID *string
	switch actor.Role {
	case models.RoleStudent:
		if actor.Division == nil {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student has no division")
		}
		id := actor.Division.ID
		divisionID = &id
	case models.RoleTeacher:
		if req.Division != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher bookings cannot name a division")
		}
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, lookupError(err, "room")
	}

	status, err := workflow.InitialBookingStatus(actor.Role)
	if err != nil {
		return nil, err
	}

	booking := &models.RoomBooking{
		RoomID:        room.ID,
		RequestedBy:   actor.UserID,
		RequesterRole: actor.Role,
		DivisionID:    divisionID,
		Purpose:       purpose,
		BookingDate:   date,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
		CreatedAt:     s.opts.now(),
	}
	if err := s.bookings.CreateIfNoClash(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingClash) {
			s.opts.metrics.BookingClash("create")
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "room is already booked for this time")
		}
		return nil, appErrors.Internal(err, "failed to create booking")
	}

	s.opts.metrics.BookingCreated(actor.Role)
	s.logger.Info("room booking requested",
		zap.String("booking_id", booking.ID),
		zap.String("room", room.RoomNumber),
		zap.String("date", date.String()),
		zap.String("status", string(status)),
	)
	s.emitAudit(ctx, actor.UserID, models.AuditActionBookingCreate, booking.ID, nil, booking)
	return booking, nil
}

// Decide applies an approver's action to the booking's current stage.
func (s *BookingService) Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.RoomBooking, error) {
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking")
	}

	var division *models.Division
	if booking.DivisionID != nil {
		division, err = s.divisions.FindByID(ctx, *booking.DivisionID)
		if err != nil {
			return nil, lookupError(err, "booking division")
		}
	}
	if err := workflow.AuthorizeBookingDecision(actor, *booking, division); err != nil {
		return nil, err
	}

	step, err := workflow.BookingTransition(booking.Status, action)
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.ApplyTransition(ctx, repository.BookingTransitionParams{
		ID:         booking.ID,
		From:       booking.Status,
		Step:       step,
		CheckClash: step.To == models.BookingApproved,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingClash):
			s.opts.metrics.BookingClash("approve")
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "another approved booking now overlaps this one")
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "booking was decided concurrently")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		default:
			return nil, appErrors.Internal(err, "failed to record booking decision")
		}
	}

	s.opts.metrics.BookingDecided(step.From, step.To)
	s.logger.Info("room booking decided",
		zap.String("booking_id", updated.ID),
		zap.String("actor", actor.UserID),
		zap.String("from", string(step.From)),
		zap.String("to", string(step.To)),
	)
	s.emitAudit(ctx, actor.UserID, models.AuditActionBookingDecision, updated.ID, booking, updated)
	if updated.Status == models.BookingApproved && s.reports != nil {
		if err := s.reports.InvalidateBookingLog(ctx); err != nil {
			s.logger.Warn("failed to invalidate booking log cache", zap.Error(err))
		}
	}
	return updated, nil
}

// ListPending returns the bookings awaiting the actor: the coordinator queue
// for their division and the HOD queue for their course. Actors without
// authority get an empty list.
func (s *BookingService) ListPending(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error) {
	result := make([]models.BookingView, 0)
	if actor.Role != models.RoleTeacher {
		return result, nil
	}
	authority := actor.Authority()

	if cohort, ok := authority.Coordinator(); ok {
		items, err := s.bookings.ListViews(ctx, models.BookingFilter{
			Statuses: []models.BookingStatus{models.BookingPendingCoordinator},
			Cohort:   &cohort,
		})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list pending bookings")
		}
		result = append(result, items...)
	}
	if course, ok := authority.HOD(); ok {
		items, err := s.bookings.ListViews(ctx, models.BookingFilter{
			Statuses:  []models.BookingStatus{models.BookingPendingHOD},
			HODCourse: &course,
		})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list pending bookings")
		}
		result = append(result, items...)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListMine returns the actor's own booking requests, newest first.
func (s *BookingService) ListMine(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error) {
	if !workflow.CanRequestRoom(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students and teachers have booking requests")
	}
	items, err := s.bookings.ListViews(ctx, models.BookingFilter{RequestedBy: actor.UserID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list bookings")
	}
	if items == nil {
		items = make([]models.BookingView, 0)
	}
	return items, nil
}

func (s *BookingService) emitAudit(ctx context.Context, userID, action, bookingID string, before, after *models.RoomBooking) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "room_booking",
		ResourceID: &bookingID,
		CreatedAt:  s.opts.now(),
	}
	stampRequestMeta(ctx, entry, "booking-service")
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.String("booking_id", bookingID), requestIDField(ctx), zap.Error(err))
	}
}
