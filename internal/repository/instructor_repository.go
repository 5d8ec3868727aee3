package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// InstructorRepository reads teaching staff.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// ListByIDs returns the instructors with the given ids.
func (r *InstructorRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Instructor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, first_name, last_name, created_at, updated_at
FROM instructors WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, err
	}
	return instructors, nil
}
