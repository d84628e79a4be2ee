package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
)

var (
	// ErrBookingClash is returned when an approved booking already occupies
	// part of the requested window.
	ErrBookingClash = errors.New("room already booked for an overlapping time")
	// ErrStaleStatus is returned when a row moved on between read and write.
	ErrStaleStatus = errors.New("status changed concurrently")
)

const bookingColumns = `id, room_id, requested_by, requester_role, division_id, purpose, booking_date, start_minute, end_minute, status, coordinator_approved, hod_approved, created_at`

// BookingRepository persists room bookings. Clash checks and the writes they
// guard run in one transaction holding an advisory lock on (room, date).
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateIfNoClash inserts the booking unless an approved booking of the same
// room and date overlaps it.
func (r *BookingRepository) CreateIfNoClash(ctx context.Context, booking *models.RoomBooking) (err error) {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRoomDate(ctx, tx, booking.RoomID, booking.BookingDate); err != nil {
		return err
	}
	if err = checkClash(ctx, tx, booking.RoomID, booking.BookingDate, booking.StartTime, booking.EndTime, ""); err != nil {
		return err
	}

	const insertQuery = `INSERT INTO room_bookings (` + bookingColumns + `)
VALUES (:id, :room_id, :requested_by, :requester_role, :division_id, :purpose, :booking_date, :start_minute, :end_minute, :status, :coordinator_approved, :hod_approved, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// GetByID fetches a booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.RoomBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM room_bookings WHERE id = $1`
	var booking models.RoomBooking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListViews returns bookings joined with room, requester and division.
func (r *BookingRepository) ListViews(ctx context.Context, filter models.BookingFilter) ([]models.BookingView, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT
	b.id, b.room_id, b.requested_by, b.requester_role, b.division_id, b.purpose,
	b.booking_date, b.start_minute, b.end_minute, b.status,
	b.coordinator_approved, b.hod_approved, b.created_at,
	r.room_number, r.room_type,
	u.username AS requester_username,
	d.course AS division_course,
	d.semester AS division_semester,
	d.letter AS division_letter
FROM room_bookings b
JOIN rooms r ON r.id = b.room_id
JOIN users u ON u.id = b.requested_by
LEFT JOIN divisions d ON d.id = b.division_id
WHERE 1=1`)

	var args []interface{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		fmt.Fprintf(&query, " AND b.status = ANY($%d)", len(args))
	}
	if filter.RequestedBy != "" {
		args = append(args, filter.RequestedBy)
		fmt.Fprintf(&query, " AND b.requested_by = $%d", len(args))
	}
	if filter.Cohort != nil {
		args = append(args, filter.Cohort.Course, filter.Cohort.Semester, filter.Cohort.Letter)
		fmt.Fprintf(&query, " AND d.course = $%d AND d.semester = $%d AND d.letter = $%d", len(args)-2, len(args)-1, len(args))
	}
	if filter.HODCourse != nil {
		args = append(args, *filter.HODCourse)
		fmt.Fprintf(&query, " AND (b.division_id IS NULL OR d.course = $%d)", len(args))
	}
	if filter.BySchedule {
		query.WriteString("\nORDER BY b.booking_date ASC, b.start_minute ASC, r.room_number ASC")
	} else {
		query.WriteString("\nORDER BY b.created_at DESC")
	}

	var views []models.BookingView
	if err := r.db.SelectContext(ctx, &views, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	for i := range views {
		views[i].Division = views[i].DivisionLabel()
	}
	return views, nil
}

// BookingTransitionParams describes one guarded status change.
type BookingTransitionParams struct {
	ID   string
	From models.BookingStatus
	Step workflow.BookingStep
	// CheckClash re-runs the clash check before the write; set when the step
	// lands on APPROVED.
	CheckClash bool
}

// ApplyTransition moves the booking along one edge. The row is locked first
// so a concurrent decision observes ErrStaleStatus instead of double-applying.
func (r *BookingRepository) ApplyTransition(ctx context.Context, params BookingTransitionParams) (booking *models.RoomBooking, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.RoomBooking
	lockQuery := `SELECT ` + bookingColumns + ` FROM room_bookings WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, params.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if current.Status != params.From {
		return nil, ErrStaleStatus
	}

	if params.CheckClash {
		if err = lockRoomDate(ctx, tx, current.RoomID, current.BookingDate); err != nil {
			return nil, err
		}
		if err = checkClash(ctx, tx, current.RoomID, current.BookingDate, current.StartTime, current.EndTime, current.ID); err != nil {
			return nil, err
		}
	}

	current.Status = params.Step.To
	current.CoordinatorApproved = current.CoordinatorApproved || params.Step.SetCoordinatorApproved
	current.HODApproved = current.HODApproved || params.Step.SetHODApproved

	const updateQuery = `UPDATE room_bookings SET status = $1, coordinator_approved = $2, hod_approved = $3 WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, updateQuery, current.Status, current.CoordinatorApproved, current.HODApproved, current.ID, params.From)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("booking rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrStaleStatus
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit booking decision: %w", err)
	}
	return &current, nil
}

// lockRoomDate serialises writers for one room on one date.
func lockRoomDate(ctx context.Context, tx *sqlx.Tx, roomID string, date models.Date) error {
	const query = `SELECT pg_advisory_xact_lock(hashtext($1))`
	if _, err := tx.ExecContext(ctx, query, roomID+"|"+date.String()); err != nil {
		return fmt.Errorf("lock room date: %w", err)
	}
	return nil
}

func checkClash(ctx context.Context, tx *sqlx.Tx, roomID string, date models.Date, start, end models.TimeOfDay, excludeID string) error {
	query := `SELECT id, start_minute, end_minute FROM room_bookings WHERE room_id = $1 AND booking_date = $2 AND status = 'APPROVED'`
	args := []interface{}{roomID, date}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}

	var approved []workflow.Interval
	if err := tx.SelectContext(ctx, &approved, query, args...); err != nil {
		return fmt.Errorf("load approved bookings: %w", err)
	}
	if clash, found := workflow.FindClash(approved, start, end); found {
		return fmt.Errorf("%w (booking %s, %s-%s)", ErrBookingClash, clash.BookingID, clash.Start, clash.End)
	}
	return nil
}
