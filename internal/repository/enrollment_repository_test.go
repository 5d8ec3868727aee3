package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-reg-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentColumns() []string {
	return []string{"id", "student_id", "section_id", "status", "grade_kind", "grade_score", "grade_pass", "enrolled_at", "updated_at"}
}

func TestEnrollmentRepositoryListDetailsByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	now := time.Now()

	detailRows := sqlmock.NewRows([]string{
		"id", "student_id", "section_id", "status", "grade_kind", "grade_score", "grade_pass", "enrolled_at", "updated_at",
		"section_name", "semester_id", "capacity", "course_id", "course_name", "credit", "course_major_id", "classification",
	}).
		AddRow("e1", "s1", "sec-1", "COMPLETED", "NUMERIC", 85.0, false, now, now,
			"A", "sem-1", 30, "cs101", "Intro", 4.0, "m-cs", "COMPULSORY").
		AddRow("e2", "s1", "sec-2", "ACTIVE", nil, nil, nil, now, now,
			"A", "sem-1", 40, "cs201", "Data Structures", 4.0, "m-cs", "ELECTIVE")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.student_id, e.section_id")).
		WithArgs("s1").
		WillReturnRows(detailRows)

	meetingRows := sqlmock.NewRows([]string{"id", "section_id", "instructor_id", "day_of_week", "start_slot", "slot_count", "location"}).
		AddRow("m1", "sec-1", "i1", 1, 1, 2, "A-101").
		AddRow("m2", "sec-2", "i2", 2, 3, 2, "B-202")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, section_id, instructor_id, day_of_week")).
		WithArgs("sec-1", "sec-2").
		WillReturnRows(meetingRows)

	prereqRows := sqlmock.NewRows([]string{"course_id", "prerequisite_id"}).
		AddRow("cs201", "cs101")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, prerequisite_id FROM course_prerequisites")).
		WithArgs("cs101", "cs201").
		WillReturnRows(prereqRows)

	details, err := repo.ListDetailsByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, details, 2)

	require.Equal(t, models.EnrollmentStatusCompleted, details[0].Status)
	require.NotNil(t, details[0].Grade)
	require.Equal(t, models.GradeKindNumeric, details[0].Grade.Kind)
	require.Equal(t, 85.0, details[0].Grade.Score)
	require.Len(t, details[0].Section.Meetings, 1)
	require.Equal(t, models.Monday, details[0].Section.Meetings[0].DayOfWeek)

	require.Nil(t, details[1].Grade)
	require.Equal(t, []string{"cs101"}, details[1].Course.Prerequisites)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListDetailsByStudentEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.student_id, e.section_id")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(enrollmentColumns()))

	details, err := repo.ListDetailsByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Empty(t, details)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(enrollmentColumns()).
		AddRow("e1", "s1", "sec-1", "ACTIVE", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, section_id, status")).
		WithArgs("s1", "sec-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(rows)

	enrollment, err := repo.FindActive(context.Background(), "s1", "sec-1")
	require.NoError(t, err)
	require.Equal(t, "e1", enrollment.ID)
	require.Nil(t, enrollment.Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments")).
		WithArgs("sec-1", string(models.EnrollmentStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountActive(context.Background(), "sec-1")
	require.NoError(t, err)
	require.Equal(t, 7, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs("e1", "s1", "sec-1", string(models.EnrollmentStatusActive), nil, nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Enrollment{
		ID: "e1", StudentID: "s1", SectionID: "sec-1",
		Status: models.EnrollmentStatusActive, EnrolledAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status")).
		WithArgs("e1", string(models.EnrollmentStatusDropped), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "e1", models.EnrollmentStatusDropped))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET status")).
		WithArgs("missing", string(models.EnrollmentStatusDropped), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.EnrollmentStatusDropped)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySetGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewEnrollmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET grade_kind")).
		WithArgs("e1", string(models.GradeKindNumeric), 91.0, false, string(models.EnrollmentStatusCompleted), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetGrade(context.Background(), "e1", models.NumericGrade(91), models.EnrollmentStatusCompleted)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
