package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// CourseRepository reads the course catalogue.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

type courseRow struct {
	ID             string                      `db:"id"`
	Name           string                      `db:"name"`
	Credit         float64                     `db:"credit"`
	MajorID        *string                     `db:"major_id"`
	Classification models.CourseClassification `db:"classification"`
}

// FindByID returns a course with its prerequisite list.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var row courseRow
	query := `SELECT id, name, credit, major_id, classification FROM courses WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	prerequisites, err := loadPrerequisites(ctx, r.db, []string{row.ID})
	if err != nil {
		return nil, err
	}
	return &models.Course{
		ID:             row.ID,
		Name:           row.Name,
		Credit:         row.Credit,
		MajorID:        row.MajorID,
		Classification: row.Classification,
		Prerequisites:  prerequisites[row.ID],
	}, nil
}
