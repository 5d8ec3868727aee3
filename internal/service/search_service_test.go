package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type mockSectionLister struct {
	sections []models.SectionDetail
}

func (m *mockSectionLister) ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.SectionDetail, error) {
	var out []models.SectionDetail
	for _, s := range m.sections {
		if s.SemesterID == semesterID {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockInstructorReader struct {
	instructors map[string]models.Instructor
}

func (m *mockInstructorReader) ListByIDs(ctx context.Context, ids []string) ([]models.Instructor, error) {
	var out []models.Instructor
	for _, id := range ids {
		if instructor, ok := m.instructors[id]; ok {
			out = append(out, instructor)
		}
	}
	return out, nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func searchFixture() (*SearchService, *memStore) {
	store := newMemStore()

	intro := fixtureSection("sec-intro", "cs101", "Intro", "A", 2,
		models.Meeting{InstructorID: "i1", DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2, Location: "A-101"})
	intro.Course.MajorID = strPtr("m-cs")
	intro.Course.Classification = models.ClassificationCompulsory

	structures := fixtureSection("sec-ds", "cs201", "Data Structures", "A", 30,
		models.Meeting{InstructorID: "i2", DayOfWeek: models.Tuesday, StartSlot: 3, SlotCount: 2, Location: "B-202"})
	structures.Course.MajorID = strPtr("m-cs")
	structures.Course.Classification = models.ClassificationElective
	structures.Course.Prerequisites = []string{"cs101"}

	art := fixtureSection("sec-art", "ar101", "Art History", "A", 30,
		models.Meeting{InstructorID: "i2", DayOfWeek: models.Monday, StartSlot: 2, SlotCount: 2, Location: "C-303"})
	art.Course.MajorID = strPtr("m-art")
	art.Course.Classification = models.ClassificationCompulsory

	yoga := fixtureSection("sec-yoga", "pe101", "Yoga", "A", 30,
		models.Meeting{InstructorID: "i1", DayOfWeek: models.Sunday, StartSlot: 1, SlotCount: 1, Location: "Gym"})

	store.addSection(intro)
	store.addSection(structures)
	store.addSection(art)
	store.addSection(yoga)

	sections := &mockSectionLister{sections: []models.SectionDetail{intro, structures, art, yoga}}
	instructors := &mockInstructorReader{instructors: map[string]models.Instructor{
		"i1": {ID: "i1", FirstName: "Ada", LastName: "Lovelace"},
		"i2": {ID: "i2", FirstName: "Alan", LastName: "Turing"},
	}}
	students := &mockStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", MajorID: "m-cs"},
	}}

	svc := NewSearchService(sections, instructors, students, store, nil, models.DefaultPassCutoff)
	return svc, store
}

func defaultFilter() models.SectionSearchFilter {
	return models.SectionSearchFilter{PageSize: 20}
}

func TestSearchReturnsAllSorted(t *testing.T) {
	svc, _ := searchFixture()

	entries, err := svc.Search(context.Background(), "s1", "sem-1", defaultFilter())
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "ar101", entries[0].Course.ID)
	assert.Equal(t, "cs101", entries[1].Course.ID)
	assert.Equal(t, "cs201", entries[2].Course.ID)
	assert.Equal(t, "pe101", entries[3].Course.ID)
	assert.Equal(t, "Intro[A]", entries[1].FullName)
}

func TestSearchInvalidPaging(t *testing.T) {
	svc, _ := searchFixture()

	_, err := svc.Search(context.Background(), "s1", "sem-1", models.SectionSearchFilter{PageSize: -1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	entries, err := svc.Search(context.Background(), "s1", "sem-1", models.SectionSearchFilter{PageSize: 0})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearchPagination(t *testing.T) {
	svc, _ := searchFixture()

	filter := defaultFilter()
	filter.PageSize = 3
	first, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	filter.PageIndex = 1
	second, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "pe101", second[0].Course.ID)

	filter.PageIndex = 2
	third, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestSearchByName(t *testing.T) {
	svc, _ := searchFixture()

	filter := defaultFilter()
	filter.Name = "Data"
	entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cs201", entries[0].Course.ID)
}

func TestSearchByInstructor(t *testing.T) {
	svc, _ := searchFixture()

	filter := defaultFilter()
	filter.Instructor = "Ada"
	entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cs101", entries[0].Course.ID)
	assert.Equal(t, "pe101", entries[1].Course.ID)
}

func TestSearchByDayAndSlot(t *testing.T) {
	svc, _ := searchFixture()

	day := models.Monday
	slot := 3
	filter := defaultFilter()
	filter.DayOfWeek = &day
	filter.ClassTime = &slot
	entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ar101", entries[0].Course.ID)
}

func TestSearchByLocation(t *testing.T) {
	svc, _ := searchFixture()

	filter := defaultFilter()
	filter.Locations = []string{"Gym", "A-101"}
	entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSearchByCourseType(t *testing.T) {
	svc, _ := searchFixture()

	cases := map[models.CourseType][]string{
		models.CourseTypeAll:             {"ar101", "cs101", "cs201", "pe101"},
		models.CourseTypeMajorCompulsory: {"cs101"},
		models.CourseTypeMajorElective:   {"cs201"},
		models.CourseTypeCrossMajor:      {"ar101"},
		models.CourseTypePublic:          {"pe101"},
	}
	for courseType, wanted := range cases {
		filter := defaultFilter()
		filter.CourseType = courseType
		entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
		require.NoError(t, err)
		var got []string
		for _, e := range entries {
			got = append(got, e.Course.ID)
		}
		assert.Equal(t, wanted, got, "course type %s", courseType)
	}
}

func TestSearchAnnotations(t *testing.T) {
	svc, store := searchFixture()
	// One seat taken in the intro section, a passed course and an active
	// conflicting enrollment on record.
	store.addEnrollment(models.Enrollment{ID: "e1", StudentID: "other", SectionID: "sec-intro", Status: models.EnrollmentStatusActive})
	store.addEnrollment(models.Enrollment{ID: "e2", StudentID: "s1", SectionID: "sec-art", Status: models.EnrollmentStatusActive})

	entries, err := svc.Search(context.Background(), "s1", "sem-1", defaultFilter())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	byCourse := make(map[string]models.CourseSearchEntry)
	for _, e := range entries {
		byCourse[e.Course.ID] = e
	}

	assert.Equal(t, 1, byCourse["cs101"].RemainingCapacity)
	// Art overlaps the intro slot on Monday and is itself held.
	assert.Contains(t, byCourse["cs101"].ConflictCourses, "Art History[A]")
	assert.False(t, byCourse["cs201"].PrerequisitesMet)
	assert.True(t, byCourse["pe101"].PrerequisitesMet)
}

func TestSearchExclusionFilters(t *testing.T) {
	svc, store := searchFixture()
	store.addEnrollment(models.Enrollment{ID: "e1", StudentID: "a", SectionID: "sec-intro", Status: models.EnrollmentStatusActive})
	store.addEnrollment(models.Enrollment{ID: "e2", StudentID: "b", SectionID: "sec-intro", Status: models.EnrollmentStatusActive})
	store.addEnrollment(models.Enrollment{ID: "e3", StudentID: "s1", SectionID: "sec-art", Status: models.EnrollmentStatusActive})
	store.addEnrollment(models.Enrollment{ID: "e4", StudentID: "s1", SectionID: "sec-yoga", Status: models.EnrollmentStatusCompleted, Grade: models.PassFailGrade(true)})

	filter := defaultFilter()
	filter.IgnoreFull = true
	filter.IgnoreConflict = true
	filter.IgnorePassed = true
	filter.IgnoreMissingPrerequisites = true

	entries, err := svc.Search(context.Background(), "s1", "sem-1", filter)
	require.NoError(t, err)
	// Intro is full, art is held, yoga is passed, data structures misses its
	// prerequisite: nothing survives.
	assert.Empty(t, entries)
}

func TestSearchUnknownStudent(t *testing.T) {
	svc, _ := searchFixture()

	_, err := svc.Search(context.Background(), "missing", "sem-1", defaultFilter())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
