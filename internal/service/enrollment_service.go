package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
)

type enrollmentStore interface {
	ListDetailsByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	FindActive(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error)
	FindLatest(ctx context.Context, studentID, sectionID string) (*models.Enrollment, error)
	CountActive(ctx context.Context, sectionID string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	SetGrade(ctx context.Context, id string, grade *models.Grade, status models.EnrollmentStatus) error
}

type sectionReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// courseTableInvalidator drops cached course tables when an enrollment set
// changes.
type courseTableInvalidator interface {
	InvalidateCourseTable(ctx context.Context, studentID string)
}

// enrollMetrics records decision outcomes and seat-lock contention.
type enrollMetrics interface {
	ObserveEnrollDecision(result models.EnrollResult, duration time.Duration)
	ObserveSeatWait(duration time.Duration)
}

// Sentinels for commit-time re-check failures inside the section critical
// section. They carry the precise outcome out of the seat controller so the
// engine never collapses a detectable condition into UNKNOWN_ERROR.
var (
	errCommitDuplicate = errors.New("duplicate active enrollment at commit")
	errCommitConflict  = errors.New("enrollment conflict at commit")
)

// ForceAddRequest is the administrative import payload.
type ForceAddRequest struct {
	StudentID string        `json:"student_id" validate:"required"`
	SectionID string        `json:"section_id" validate:"required"`
	Grade     *models.Grade `json:"grade,omitempty"`
}

// SetGradeRequest assigns a grade to an existing enrollment.
type SetGradeRequest struct {
	StudentID string        `json:"student_id" validate:"required"`
	SectionID string        `json:"section_id" validate:"required"`
	Grade     *models.Grade `json:"grade" validate:"required"`
}

// EnrollmentService is the enrollment decision engine. It owns the seat
// accounting derived from the live enrollment set and orchestrates the
// conflict, prerequisite and capacity checks in fixed precedence.
type EnrollmentService struct {
	enrollments enrollmentStore
	sections    sectionReader
	courses     courseReader
	seats       *SeatController
	tables      courseTableInvalidator
	metrics     enrollMetrics
	validator   *validator.Validate
	logger      *zap.Logger
	passCutoff  float64

	// studentLocks serialises the commit-time re-check and insert per
	// student. The section lock alone cannot order two enrollments of the
	// same student into different sections, so both could pass the conflict
	// re-check before either row lands. Always acquired inside a section
	// lock, never the other way around.
	studentLocks *lockTable
}

// NewEnrollmentService constructs the engine. tables and metrics may be nil.
func NewEnrollmentService(enrollments enrollmentStore, sections sectionReader, courses courseReader, seats *SeatController, tables courseTableInvalidator, metrics enrollMetrics, validate *validator.Validate, logger *zap.Logger, passCutoff float64) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if passCutoff <= 0 {
		passCutoff = models.DefaultPassCutoff
	}
	return &EnrollmentService{
		enrollments:  enrollments,
		sections:     sections,
		courses:      courses,
		seats:        seats,
		tables:       tables,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		passCutoff:   passCutoff,
		studentLocks: newLockTable(),
	}
}

// Enroll answers an enrollment request with one of the eight enumerated
// outcomes. Checks short-circuit in fixed order against a single snapshot of
// the student's history; the duplicate and conflict checks are re-run at
// commit time inside the section's critical section. Unexpected faults
// collapse to UNKNOWN_ERROR here and nowhere else.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, sectionID string) models.EnrollResult {
	start := time.Now()
	result := s.enroll(ctx, studentID, sectionID)
	if s.metrics != nil {
		s.metrics.ObserveEnrollDecision(result, time.Since(start))
	}
	if result == models.EnrollSuccess && s.tables != nil {
		s.tables.InvalidateCourseTable(ctx, studentID)
	}
	return result
}

func (s *EnrollmentService) enroll(ctx context.Context, studentID, sectionID string) models.EnrollResult {
	section, err := s.sections.FindDetailByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EnrollCourseNotFound
		}
		s.logger.Error("load section failed", zap.String("section_id", sectionID), zap.Error(err))
		return models.EnrollUnknownError
	}

	history, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("load enrollment history failed", zap.String("student_id", studentID), zap.Error(err))
		return models.EnrollUnknownError
	}

	for _, d := range history {
		if d.Status == models.EnrollmentStatusActive && d.SectionID == sectionID {
			return models.EnrollAlreadyEnrolled
		}
	}

	passed := passedCourseIDs(history, s.passCutoff)
	if _, ok := passed[section.CourseID]; ok {
		return models.EnrollAlreadyPassed
	}

	course, err := s.courses.FindByID(ctx, section.CourseID)
	if err != nil {
		s.logger.Error("load course failed", zap.String("course_id", section.CourseID), zap.Error(err))
		return models.EnrollUnknownError
	}
	if !PrerequisitesSatisfied(course.Prerequisites, passed) {
		return models.EnrollPrereqNotFulfilled
	}

	if DetectConflict(*section, activeSections(history)) != ConflictNone {
		return models.EnrollCourseConflictFound
	}

	seatStart := time.Now()
	reserved, err := s.seats.TryReserve(ctx, sectionID, section.Capacity, func(ctx context.Context) error {
		// Re-check under the section AND student locks: a racing request for
		// the same student may target a different section, so the section
		// lock alone would let both commits pass the conflict re-check.
		studentLock := s.studentLocks.get(studentID)
		studentLock.Lock()
		defer studentLock.Unlock()

		fresh, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		for _, d := range fresh {
			if d.Status == models.EnrollmentStatusActive && d.SectionID == sectionID {
				return errCommitDuplicate
			}
		}
		if DetectConflict(*section, activeSections(fresh)) != ConflictNone {
			return errCommitConflict
		}
		now := time.Now().UTC()
		return s.enrollments.Create(ctx, &models.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  studentID,
			SectionID:  sectionID,
			Status:     models.EnrollmentStatusActive,
			EnrolledAt: now,
			UpdatedAt:  now,
		})
	})
	if s.metrics != nil {
		s.metrics.ObserveSeatWait(time.Since(seatStart))
	}
	if err != nil {
		switch {
		case errors.Is(err, errCommitDuplicate):
			return models.EnrollAlreadyEnrolled
		case errors.Is(err, errCommitConflict):
			return models.EnrollCourseConflictFound
		default:
			s.logger.Error("enrollment commit failed", zap.String("student_id", studentID), zap.String("section_id", sectionID), zap.Error(err))
			return models.EnrollUnknownError
		}
	}
	if !reserved {
		return models.EnrollCourseIsFull
	}
	return models.EnrollSuccess
}

// Drop releases an ACTIVE enrollment. A graded enrollment is frozen and the
// failure is reported to the caller.
func (s *EnrollmentService) Drop(ctx context.Context, studentID, sectionID string) error {
	enrollment, err := s.enrollments.FindActive(ctx, studentID, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "active enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Grade != nil {
		return appErrors.Clone(appErrors.ErrGradeAssigned, "cannot drop a graded enrollment")
	}
	err = s.seats.Release(ctx, sectionID, func(ctx context.Context) error {
		return s.enrollments.UpdateStatus(ctx, enrollment.ID, models.EnrollmentStatusDropped)
	})
	if err != nil {
		return err
	}
	if s.tables != nil {
		s.tables.InvalidateCourseTable(ctx, studentID)
	}
	return nil
}

// ForceAdd is the administrative bypass: no prerequisite, pass-history,
// conflict or capacity gate, but the seat is still taken under the section
// lock so counts stay consistent, and a duplicate ACTIVE enrollment is still
// rejected. A non-nil grade completes the enrollment immediately.
func (s *EnrollmentService) ForceAdd(ctx context.Context, req ForceAddRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid force-add payload")
	}
	if err := validateGrade(req.Grade); err != nil {
		return err
	}
	if _, err := s.sections.FindDetailByID(ctx, req.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	status := models.EnrollmentStatusActive
	if req.Grade != nil {
		status = models.EnrollmentStatusCompleted
	}
	err := s.seats.ForceReserve(ctx, req.SectionID, func(ctx context.Context) error {
		studentLock := s.studentLocks.get(req.StudentID)
		studentLock.Lock()
		defer studentLock.Unlock()

		if _, err := s.enrollments.FindActive(ctx, req.StudentID, req.SectionID); err == nil {
			return errCommitDuplicate
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		now := time.Now().UTC()
		return s.enrollments.Create(ctx, &models.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  req.StudentID,
			SectionID:  req.SectionID,
			Status:     status,
			Grade:      req.Grade,
			EnrolledAt: now,
			UpdatedAt:  now,
		})
	})
	if err != nil {
		if errors.Is(err, errCommitDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in section")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import enrollment")
	}
	if s.tables != nil {
		s.tables.InvalidateCourseTable(ctx, req.StudentID)
	}
	return nil
}

// SetGrade assigns or overwrites the grade of an existing enrollment in any
// status and completes it. The change is observed by prerequisite checks on
// the next evaluation; already-active enrollments are not re-checked.
func (s *EnrollmentService) SetGrade(ctx context.Context, req SetGradeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if err := validateGrade(req.Grade); err != nil {
		return err
	}
	enrollment, err := s.enrollments.FindLatest(ctx, req.StudentID, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	status := enrollment.Status
	if req.Grade != nil {
		status = models.EnrollmentStatusCompleted
	}
	if err := s.enrollments.SetGrade(ctx, enrollment.ID, req.Grade, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set grade")
	}
	return nil
}

// EnrolledCoursesAndGrades returns the student's enrolled courses with their
// grades (nil while ungraded), optionally restricted to one semester.
// Dropped enrollments are excluded.
func (s *EnrollmentService) EnrolledCoursesAndGrades(ctx context.Context, studentID, semesterID string) ([]models.CourseGrade, error) {
	history, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	var grades []models.CourseGrade
	for _, d := range history {
		if d.Status == models.EnrollmentStatusDropped {
			continue
		}
		if semesterID != "" && d.Section.SemesterID != semesterID {
			continue
		}
		grades = append(grades, models.CourseGrade{
			Course:     d.Course,
			SemesterID: d.Section.SemesterID,
			Grade:      d.Grade,
		})
	}
	return grades, nil
}

// validateGrade rejects malformed grades before any mutation.
func validateGrade(g *models.Grade) error {
	if g == nil {
		return nil
	}
	switch g.Kind {
	case models.GradeKindNumeric:
		if g.Score < 0 || g.Score > 100 {
			return appErrors.Clone(appErrors.ErrValidation, "numeric grade must be between 0 and 100")
		}
	case models.GradeKindPassFail:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown grade kind")
	}
	return nil
}
