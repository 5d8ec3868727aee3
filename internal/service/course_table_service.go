package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type semesterReader interface {
	FindByDate(ctx context.Context, date time.Time) (*models.Semester, error)
}

// tableCache abstracts the Redis-backed cache. All methods must tolerate a
// cold cache; Get returns appErrors.ErrCacheMiss when the key is absent.
type tableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CourseTableService reconstructs a student's Monday-to-Sunday course table
// for the week of a reference date.
type CourseTableService struct {
	enrollments enrollmentStore
	semesters   semesterReader
	instructors instructorReader
	cache       tableCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewCourseTableService constructs CourseTableService. cache may be nil.
func NewCourseTableService(enrollments enrollmentStore, semesters semesterReader, instructors instructorReader, cache tableCache, cacheTTL time.Duration, logger *zap.Logger) *CourseTableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CourseTableService{
		enrollments: enrollments,
		semesters:   semesters,
		instructors: instructors,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// GetCourseTable returns the weekly table for the week of date. Any weekday
// of the same week yields the same table: the semester is resolved from the
// week's Monday, the same day the cache key is derived from, so a semester
// boundary inside the week cannot make two days of one week disagree. Only
// ACTIVE enrollments of that semester are included.
func (s *CourseTableService) GetCourseTable(ctx context.Context, studentID string, date time.Time) (*models.CourseTable, error) {
	monday := models.MondayOf(date)
	key := courseTableKey(studentID, monday)
	if s.cache != nil {
		var cached models.CourseTable
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	semester, err := s.semesters.FindByDate(ctx, monday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no semester covers the given date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve semester")
	}

	history, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	var sections []models.SectionDetail
	for _, d := range history {
		if d.Status != models.EnrollmentStatusActive || d.Section.SemesterID != semester.ID {
			continue
		}
		sections = append(sections, models.SectionDetail{CourseSection: d.Section, Course: d.Course})
	}

	instructorsByID, err := s.loadInstructors(ctx, sections)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	table := models.NewCourseTable(monday)
	for _, section := range sections {
		for _, m := range section.Meetings {
			entry := models.CourseTableEntry{
				CourseFullName: section.FullName(),
				DayOfWeek:      m.DayOfWeek,
				StartSlot:      m.StartSlot,
				SlotCount:      m.SlotCount,
				Location:       m.Location,
			}
			if instructor, ok := instructorsByID[m.InstructorID]; ok {
				entry.Instructor = instructor.FullName()
			}
			table.Days[m.DayOfWeek] = append(table.Days[m.DayOfWeek], entry)
		}
	}
	for day := models.Monday; day <= models.Sunday; day++ {
		entries := table.Days[day]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].StartSlot != entries[j].StartSlot {
				return entries[i].StartSlot < entries[j].StartSlot
			}
			return entries[i].CourseFullName < entries[j].CourseFullName
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, table, s.cacheTTL); err != nil {
			s.logger.Warn("course table cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return table, nil
}

// InvalidateCourseTable drops every cached week for the student. Called by
// the enrollment engine after any mutation of the active set.
func (s *CourseTableService) InvalidateCourseTable(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("course_table:%s:*", studentID)); err != nil {
		s.logger.Warn("course table cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *CourseTableService) loadInstructors(ctx context.Context, sections []models.SectionDetail) (map[string]models.Instructor, error) {
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

func courseTableKey(studentID string, monday time.Time) string {
	return fmt.Sprintf("course_table:%s:%s", studentID, monday.Format("2006-01-02"))
}
