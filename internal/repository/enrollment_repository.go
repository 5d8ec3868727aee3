package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type enrollmentRow struct {
	ID         string                  `db:"id"`
	StudentID  string                  `db:"student_id"`
	SectionID  string                  `db:"section_id"`
	Status     models.EnrollmentStatus `db:"status"`
	GradeKind  *models.GradeKind       `db:"grade_kind"`
	GradeScore *float64                `db:"grade_score"`
	GradePass  *bool                   `db:"grade_pass"`
	EnrolledAt time.Time               `db:"enrolled_at"`
	UpdatedAt  time.Time               `db:"updated_at"`
}

func (r enrollmentRow) toModel() models.Enrollment {
	e := models.Enrollment{
		ID:         r.ID,
		StudentID:  r.StudentID,
		SectionID:  r.SectionID,
		Status:     r.Status,
		EnrolledAt: r.EnrolledAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.GradeKind != nil {
		grade := models.Grade{Kind: *r.GradeKind}
		if r.GradeScore != nil {
			grade.Score = *r.GradeScore
		}
		if r.GradePass != nil {
			grade.Pass = *r.GradePass
		}
		e.Grade = &grade
	}
	return e
}

type enrollmentDetailRow struct {
	enrollmentRow
	SectionName    string                      `db:"section_name"`
	SemesterID     string                      `db:"semester_id"`
	Capacity       int                         `db:"capacity"`
	CourseID       string                      `db:"course_id"`
	CourseName     string                      `db:"course_name"`
	Credit         float64                     `db:"credit"`
	CourseMajorID  *string                     `db:"course_major_id"`
	Classification models.CourseClassification `db:"classification"`
}

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.section_id, e.status,
e.grade_kind, e.grade_score, e.grade_pass, e.enrolled_at, e.updated_at,
s.name AS section_name, s.semester_id, s.capacity,
c.id AS course_id, c.name AS course_name, c.credit, c.major_id AS course_major_id, c.classification
FROM enrollments e
JOIN sections s ON s.id = e.section_id
JOIN courses c ON c.id = s.course_id`

// ListDetailsByStudent returns the student's full enrollment history with
// sections, courses, meetings and prerequisite lists attached.
func (r *EnrollmentRepository) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var rows []enrollmentDetailRow
	query := enrollmentDetailSelect + ` WHERE e.student_id = $1 ORDER BY e.enrolled_at`
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	sectionIDs := make([]string, 0, len(rows))
	courseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		sectionIDs = append(sectionIDs, row.SectionID)
		courseIDs = append(courseIDs, row.CourseID)
	}
	meetings, err := loadMeetings(ctx, r.db, sectionIDs)
	if err != nil {
		return nil, err
	}
	prerequisites, err := loadPrerequisites(ctx, r.db, courseIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.EnrollmentDetail, 0, len(rows))
	for _, row := range rows {
		course := models.Course{
			ID:             row.CourseID,
			Name:           row.CourseName,
			Credit:         row.Credit,
			MajorID:        row.CourseMajorID,
			Classification: row.Classification,
			Prerequisites:  prerequisites[row.CourseID],
		}
		section := models.CourseSection{
			ID:         row.SectionID,
			CourseID:   row.CourseID,
			SemesterID: row.SemesterID,
			Name:       row.SectionName,
			Capacity:   row.Capacity,
			Meetings:   meetings[row.SectionID],
		}
		details = append(details, models.EnrollmentDetail{
			Enrollment: row.toModel(),
			Section:    section,
			Course:     course,
		})
	}
	return details, nil
}

// FindActive returns the student's ACTIVE enrollment for a section.
func (r *EnrollmentRepository) FindActive(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	var row enrollmentRow
	query := `SELECT id, student_id, section_id, status, grade_kind, grade_score, grade_pass, enrolled_at, updated_at
FROM enrollments WHERE student_id = $1 AND section_id = $2 AND status = $3`
	if err := r.db.GetContext(ctx, &row, query, studentID, sectionID, models.EnrollmentStatusActive); err != nil {
		return nil, err
	}
	enrollment := row.toModel()
	return &enrollment, nil
}

// FindLatest returns the most recent enrollment for the pair in any status.
func (r *EnrollmentRepository) FindLatest(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error) {
	var row enrollmentRow
	query := `SELECT id, student_id, section_id, status, grade_kind, grade_score, grade_pass, enrolled_at, updated_at
FROM enrollments WHERE student_id = $1 AND section_id = $2 ORDER BY enrolled_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, studentID, sectionID); err != nil {
		return nil, err
	}
	enrollment := row.toModel()
	return &enrollment, nil
}

// CountActive returns the live ACTIVE enrollment count for a section.
func (r *EnrollmentRepository) CountActive(ctx context.Context, sectionID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM enrollments WHERE section_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, sectionID, models.EnrollmentStatusActive); err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `INSERT INTO enrollments (id, student_id, section_id, status, grade_kind, grade_score, grade_pass, enrolled_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	kind, score, pass := gradeColumns(enrollment.Grade)
	_, err := r.db.ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentID, enrollment.SectionID, enrollment.Status,
		kind, score, pass, enrollment.EnrolledAt, enrollment.UpdatedAt)
	return err
}

// UpdateStatus transitions an enrollment to a new status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	query := `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetGrade stores the grade and resulting status for an enrollment.
func (r *EnrollmentRepository) SetGrade(ctx context.Context, id string, grade *models.Grade, status models.EnrollmentStatus) error {
	query := `UPDATE enrollments SET grade_kind = $2, grade_score = $3, grade_pass = $4, status = $5, updated_at = $6 WHERE id = $1`
	kind, score, pass := gradeColumns(grade)
	result, err := r.db.ExecContext(ctx, query, id, kind, score, pass, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(result)
}

func gradeColumns(grade *models.Grade) (*models.GradeKind, *float64, *bool) {
	if grade == nil {
		return nil, nil, nil
	}
	kind := grade.Kind
	score := grade.Score
	pass := grade.Pass
	return &kind, &score, &pass
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
