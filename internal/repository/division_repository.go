package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

// DivisionRepository persists (course, semester, letter) cohorts.
type DivisionRepository struct {
	db *sqlx.DB
}

// NewDivisionRepository constructs the repository.
func NewDivisionRepository(db *sqlx.DB) *DivisionRepository {
	return &DivisionRepository{db: db}
}

// FindByID fetches a division.
func (r *DivisionRepository) FindByID(ctx context.Context, id string) (*models.Division, error) {
	const query = `SELECT id, course, semester, letter FROM divisions WHERE id = $1`
	var division models.Division
	if err := r.db.GetContext(ctx, &division, query, id); err != nil {
		return nil, err
	}
	return &division, nil
}

// GetOrCreate returns the division for the cohort, inserting it on first use.
// Concurrent callers converge on the same row through the unique key.
func (r *DivisionRepository) GetOrCreate(ctx context.Context, cohort models.Cohort) (*models.Division, error) {
	const insert = `INSERT INTO divisions (id, course, semester, letter) VALUES ($1, $2, $3, $4)
ON CONFLICT (course, semester, letter) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), cohort.Course, cohort.Semester, cohort.Letter); err != nil {
		return nil, fmt.Errorf("insert division: %w", err)
	}

	const query = `SELECT id, course, semester, letter FROM divisions WHERE course = $1 AND semester = $2 AND letter = $3`
	var division models.Division
	if err := r.db.GetContext(ctx, &division, query, cohort.Course, cohort.Semester, cohort.Letter); err != nil {
		return nil, fmt.Errorf("load division: %w", err)
	}
	return &division, nil
}
