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

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

type majorReader interface {
	FindByID(ctx context.Context, id string) (*models.Major, error)
}

// AddStudentRequest registers a student into the institution.
type AddStudentRequest struct {
	ID           string    `json:"id,omitempty"`
	MajorID      string    `json:"major_id" validate:"required"`
	FirstName    string    `json:"first_name" validate:"required"`
	LastName     string    `json:"last_name" validate:"required"`
	EnrolledDate time.Time `json:"enrolled_date" validate:"required"`
}

// StudentService answers student-scoped queries: registration, owning major
// and prerequisite satisfaction.
type StudentService struct {
	students    studentStore
	majors      majorReader
	courses     courseReader
	enrollments enrollmentStore
	validator   *validator.Validate
	logger      *zap.Logger
	passCutoff  float64
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentStore, majors majorReader, courses courseReader, enrollments enrollmentStore, validate *validator.Validate, logger *zap.Logger, passCutoff float64) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if passCutoff <= 0 {
		passCutoff = models.DefaultPassCutoff
	}
	return &StudentService{
		students:    students,
		majors:      majors,
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		logger:      logger,
		passCutoff:  passCutoff,
	}
}

// AddStudent creates a student. An unknown major is an integrity violation
// and is rejected before any mutation.
func (s *StudentService) AddStudent(ctx context.Context, req AddStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if _, err := s.majors.FindByID(ctx, req.MajorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrIntegrity, "unknown major")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	student := &models.Student{
		ID:           req.ID,
		MajorID:      req.MajorID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EnrolledDate: req.EnrolledDate,
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// GetStudentMajor returns the student's owning major.
func (s *StudentService) GetStudentMajor(ctx context.Context, studentID string) (*models.Major, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	major, err := s.majors.FindByID(ctx, student.MajorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major")
	}
	return major, nil
}

// PassedPrerequisites reports whether the student satisfies every
// prerequisite of the course.
func (s *StudentService) PassedPrerequisites(ctx context.Context, studentID, courseID string) (bool, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	history, err := s.enrollments.ListDetailsByStudent(ctx, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	return PrerequisitesSatisfied(course.Prerequisites, passedCourseIDs(history, s.passCutoff)), nil
}
