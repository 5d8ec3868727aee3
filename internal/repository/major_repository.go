package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// MajorRepository reads academic majors.
type MajorRepository struct {
	db *sqlx.DB
}

// NewMajorRepository constructs the repository.
func NewMajorRepository(db *sqlx.DB) *MajorRepository {
	return &MajorRepository{db: db}
}

// FindByID returns one major by id.
func (r *MajorRepository) FindByID(ctx context.Context, id string) (*models.Major, error) {
	var major models.Major
	query := `SELECT id, name, department, created_at, updated_at FROM majors WHERE id = $1`
	if err := r.db.GetContext(ctx, &major, query, id); err != nil {
		return nil, err
	}
	return &major, nil
}
