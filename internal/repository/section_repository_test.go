package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-reg-api/internal/models"
)

func sectionDetailColumns() []string {
	return []string{"id", "course_id", "semester_id", "name", "capacity", "course_name", "credit", "course_major_id", "classification"}
}

func TestSectionRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.course_id, s.semester_id")).
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows(sectionDetailColumns()).
			AddRow("sec-1", "cs201", "sem-1", "A", 30, "Data Structures", 4.0, "m-cs", "ELECTIVE"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, section_id, instructor_id, day_of_week")).
		WithArgs("sec-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "instructor_id", "day_of_week", "start_slot", "slot_count", "location"}).
			AddRow("m1", "sec-1", "i1", 3, 5, 2, "A-101"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, prerequisite_id FROM course_prerequisites")).
		WithArgs("cs201").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "prerequisite_id"}).
			AddRow("cs201", "cs101"))

	detail, err := repo.FindDetailByID(context.Background(), "sec-1")
	require.NoError(t, err)
	require.Equal(t, "Data Structures[A]", detail.FullName())
	require.Equal(t, 30, detail.Capacity)
	require.Len(t, detail.Meetings, 1)
	require.Equal(t, models.Wednesday, detail.Meetings[0].DayOfWeek)
	require.Equal(t, []string{"cs101"}, detail.Course.Prerequisites)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryFindDetailByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.course_id, s.semester_id")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDetailByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListDetailsBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id, s.course_id, s.semester_id")).
		WithArgs("sem-1").
		WillReturnRows(sqlmock.NewRows(sectionDetailColumns()).
			AddRow("sec-1", "cs101", "sem-1", "A", 30, "Intro", 4.0, nil, "NONE").
			AddRow("sec-2", "cs101", "sem-1", "B", 30, "Intro", 4.0, nil, "NONE"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, section_id, instructor_id, day_of_week")).
		WithArgs("sec-1", "sec-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "instructor_id", "day_of_week", "start_slot", "slot_count", "location"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, prerequisite_id FROM course_prerequisites")).
		WithArgs("cs101", "cs101").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "prerequisite_id"}))

	details, err := repo.ListDetailsBySemester(context.Background(), "sem-1")
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Nil(t, details[0].Course.MajorID)
	require.NoError(t, mock.ExpectationsWereMet())
}
