package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

// TeacherRepository loads teacher profiles with their approval authority.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByUserID returns the teacher profile of a user. A row violating the
// all-or-nothing authority rules is reported as an error rather than loaded.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, qualification, department, position,
       is_batch_coordinator, coordinator_course, coordinator_semester, coordinator_division,
       is_hod, hod_course
FROM teachers WHERE user_id = $1`
	var row models.TeacherRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	teacher, err := row.Teacher()
	if err != nil {
		return nil, fmt.Errorf("teacher %s has invalid authority: %w", row.ID, err)
	}
	return teacher, nil
}
