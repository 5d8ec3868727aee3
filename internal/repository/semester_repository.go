package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// SemesterRepository reads the academic calendar.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// FindByID returns one semester by id.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	var semester models.Semester
	query := `SELECT id, name, start_date, end_date, created_at, updated_at FROM semesters WHERE id = $1`
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindByDate returns the semester covering the given date. Returns
// sql.ErrNoRows when no semester covers it.
func (r *SemesterRepository) FindByDate(ctx context.Context, date time.Time) (*models.Semester, error) {
	var semester models.Semester
	query := `SELECT id, name, start_date, end_date, created_at, updated_at FROM semesters
WHERE start_date <= $1 AND end_date >= $1 ORDER BY start_date DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &semester, query, date); err != nil {
		return nil, err
	}
	return &semester, nil
}
