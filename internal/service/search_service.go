package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type semesterSectionReader interface {
	ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.SectionDetail, error)
}

type instructorReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Instructor, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SearchService produces paginated, filtered section listings for a student,
// reusing the engine's conflict, prerequisite and capacity checks as
// exclusion filters.
type SearchService struct {
	sections    semesterSectionReader
	instructors instructorReader
	students    studentReader
	enrollments enrollmentStore
	logger      *zap.Logger
	passCutoff  float64
}

// NewSearchService constructs SearchService.
func NewSearchService(sections semesterSectionReader, instructors instructorReader, students studentReader, enrollments enrollmentStore, logger *zap.Logger, passCutoff float64) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if passCutoff <= 0 {
		passCutoff = models.DefaultPassCutoff
	}
	return &SearchService{
		sections:    sections,
		instructors: instructors,
		students:    students,
		enrollments: enrollments,
		logger:      logger,
		passCutoff:  passCutoff,
	}
}

// Search runs the three-stage pipeline: structural filters, optional
// exclusion filters, then stable ordering and pagination. pageSize 0 yields
// an empty page, not an error.
func (s *SearchService) Search(ctx context.Context, studentID, semesterID string, filter models.SectionSearchFilter) ([]models.CourseSearchEntry, error) {
	if filter.PageSize < 0 || filter.PageIndex < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "pageSize and pageIndex must be non-negative")
	}
	if filter.PageSize == 0 {
		return []models.CourseSearchEntry{}, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	sections, err := s.sections.ListDetailsBySemester(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	history, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	passed := passedCourseIDs(history, s.passCutoff)
	active := activeSections(history)

	instructorsByID, err := s.loadInstructors(ctx, sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	var entries []models.CourseSearchEntry
	for _, section := range sections {
		if !s.matchesStructural(section, filter, student, instructorsByID) {
			continue
		}

		activeCount, err := s.enrollments.CountActive(ctx, section.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count section seats")
		}
		remaining := section.Capacity - activeCount
		if remaining < 0 {
			remaining = 0
		}

		conflicts := ConflictingCourses(section, active)
		_, alreadyPassed := passed[section.CourseID]
		prereqMet := PrerequisitesSatisfied(section.Course.Prerequisites, passed)

		if filter.IgnoreFull && remaining == 0 {
			continue
		}
		if filter.IgnoreConflict && len(conflicts) > 0 {
			continue
		}
		if filter.IgnorePassed && alreadyPassed {
			continue
		}
		if filter.IgnoreMissingPrerequisites && !prereqMet {
			continue
		}

		entries = append(entries, models.CourseSearchEntry{
			Course:            section.Course,
			Section:           section.CourseSection,
			FullName:          section.FullName(),
			RemainingCapacity: remaining,
			ConflictCourses:   conflicts,
			PrerequisitesMet:  prereqMet,
			AlreadyPassed:     alreadyPassed,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Course.ID != entries[j].Course.ID {
			return entries[i].Course.ID < entries[j].Course.ID
		}
		return entries[i].Section.ID < entries[j].Section.ID
	})

	offset := filter.PageIndex * filter.PageSize
	if offset >= len(entries) {
		return []models.CourseSearchEntry{}, nil
	}
	end := offset + filter.PageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end], nil
}

func (s *SearchService) matchesStructural(section models.SectionDetail, filter models.SectionSearchFilter, student *models.Student, instructorsByID map[string]models.Instructor) bool {
	if filter.CourseID != "" && !strings.Contains(section.CourseID, filter.CourseID) {
		return false
	}
	if filter.Name != "" && !strings.Contains(section.FullName(), filter.Name) {
		return false
	}
	if filter.Instructor != "" && !anyInstructorMatches(section, filter.Instructor, instructorsByID) {
		return false
	}
	if filter.DayOfWeek != nil && !anyMeetingOnDay(section, *filter.DayOfWeek) {
		return false
	}
	if filter.ClassTime != nil && !anyMeetingContains(section, *filter.ClassTime) {
		return false
	}
	if len(filter.Locations) > 0 && !anyMeetingAtLocations(section, filter.Locations) {
		return false
	}
	return matchesCourseType(section.Course, filter.CourseType, student.MajorID)
}

func anyInstructorMatches(section models.SectionDetail, search string, instructorsByID map[string]models.Instructor) bool {
	for _, m := range section.Meetings {
		if instructor, ok := instructorsByID[m.InstructorID]; ok && instructor.NameMatches(search) {
			return true
		}
	}
	return false
}

func anyMeetingOnDay(section models.SectionDetail, day models.DayOfWeek) bool {
	for _, m := range section.Meetings {
		if m.DayOfWeek == day {
			return true
		}
	}
	return false
}

func anyMeetingContains(section models.SectionDetail, slot int) bool {
	for _, m := range section.Meetings {
		if m.Contains(slot) {
			return true
		}
	}
	return false
}

func anyMeetingAtLocations(section models.SectionDetail, locations []string) bool {
	wanted := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		wanted[loc] = struct{}{}
	}
	for _, m := range section.Meetings {
		if _, ok := wanted[m.Location]; ok {
			return true
		}
	}
	return false
}

func matchesCourseType(course models.Course, courseType models.CourseType, studentMajorID string) bool {
	switch courseType {
	case "", models.CourseTypeAll:
		return true
	case models.CourseTypeMajorCompulsory:
		return course.MajorID != nil && *course.MajorID == studentMajorID &&
			course.Classification == models.ClassificationCompulsory
	case models.CourseTypeMajorElective:
		return course.MajorID != nil && *course.MajorID == studentMajorID &&
			course.Classification == models.ClassificationElective
	case models.CourseTypeCrossMajor:
		return course.MajorID != nil && *course.MajorID != studentMajorID
	case models.CourseTypePublic:
		return course.MajorID == nil
	default:
		return false
	}
}

func (s *SearchService) loadInstructors(ctx context.Context, sections []models.SectionDetail) (map[string]models.Instructor, error) {
	idSet := make(map[string]struct{})
	for _, section := range sections {
		for _, m := range section.Meetings {
			if m.InstructorID != "" {
				idSet[m.InstructorID] = struct{}{}
			}
		}
	}
	if len(idSet) == 0 {
		return map[string]models.Instructor{}, nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	instructors, err := s.instructors.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Instructor, len(instructors))
	for _, instructor := range instructors {
		byID[instructor.ID] = instructor
	}
	return byID, nil
}
