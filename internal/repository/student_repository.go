package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

// StudentRepository loads student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository builds a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByUserID returns the student profile of a user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, roll_number, course, semester, division_id FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}
