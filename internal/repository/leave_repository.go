package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

const leaveColumns = `id, student_id, division_id, reason, from_date, to_date, document_ref, status, coordinator_remark, decided_by, applied_at, decision_at`

// LeaveRepository persists student leave applications.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a leave application.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.StudentLeave) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.AppliedAt.IsZero() {
		leave.AppliedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_leaves (` + leaveColumns + `)
VALUES (:id, :student_id, :division_id, :reason, :from_date, :to_date, :document_ref, :status, :coordinator_remark, :decided_by, :applied_at, :decision_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave: %w", err)
	}
	return nil
}

// GetByID fetches a leave.
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*models.StudentLeave, error) {
	const query = `SELECT ` + leaveColumns + ` FROM student_leaves WHERE id = $1`
	var leave models.StudentLeave
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// ListViews returns leaves joined with the student's username and division.
func (r *LeaveRepository) ListViews(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	query := strings.Builder{}
	query.WriteString(`
SELECT
	l.id, l.student_id, l.division_id, l.reason, l.from_date, l.to_date, l.document_ref,
	l.status, l.coordinator_remark, l.decided_by, l.applied_at, l.decision_at,
	u.username AS student_username,
	d.course AS division_course,
	d.semester AS division_semester,
	d.letter AS division_letter
FROM student_leaves l
JOIN students s ON s.id = l.student_id
JOIN users u ON u.id = s.user_id
JOIN divisions d ON d.id = l.division_id
WHERE 1=1`)

	var args []interface{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		fmt.Fprintf(&query, " AND l.status = ANY($%d)", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, " AND l.student_id = $%d", len(args))
	}
	if filter.Cohort != nil {
		args = append(args, filter.Cohort.Course, filter.Cohort.Semester, filter.Cohort.Letter)
		fmt.Fprintf(&query, " AND d.course = $%d AND d.semester = $%d AND d.letter = $%d", len(args)-2, len(args)-1, len(args))
	}
	if filter.ByDecision {
		query.WriteString("\nORDER BY l.decision_at DESC NULLS LAST, l.applied_at DESC")
	} else {
		query.WriteString("\nORDER BY l.applied_at DESC")
	}

	var views []models.LeaveView
	if err := r.db.SelectContext(ctx, &views, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}
	for i := range views {
		views[i].Division = views[i].DivisionLabel()
	}
	return views, nil
}

// LeaveDecisionParams carries the outcome recorded on a pending leave.
type LeaveDecisionParams struct {
	ID        string
	Status    models.LeaveStatus
	Remark    *string
	DecidedBy string
	DecidedAt time.Time
}

// Decide records the decision only while the leave is still pending.
func (r *LeaveRepository) Decide(ctx context.Context, params LeaveDecisionParams) error {
	const query = `UPDATE student_leaves
SET status = $1, coordinator_remark = $2, decided_by = $3, decision_at = $4
WHERE id = $5 AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, query, params.Status, params.Remark, params.DecidedBy, params.DecidedAt, params.ID)
	if err != nil {
		return fmt.Errorf("decide leave: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("leave rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleStatus
	}
	return nil
}
