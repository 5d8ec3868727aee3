package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. COMPLETED and DROPPED are terminal.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// EnrollResult enumerates the outcomes of an enroll request.
type EnrollResult string

// Enroll outcomes, in check order.
const (
	EnrollSuccess             EnrollResult = "SUCCESS"
	EnrollCourseNotFound      EnrollResult = "COURSE_NOT_FOUND"
	EnrollCourseIsFull        EnrollResult = "COURSE_IS_FULL"
	EnrollAlreadyEnrolled     EnrollResult = "ALREADY_ENROLLED"
	EnrollAlreadyPassed       EnrollResult = "ALREADY_PASSED"
	EnrollPrereqNotFulfilled  EnrollResult = "PREREQUISITES_NOT_FULFILLED"
	EnrollCourseConflictFound EnrollResult = "COURSE_CONFLICT_FOUND"
	EnrollUnknownError        EnrollResult = "UNKNOWN_ERROR"
)

// Enrollment captures a student's registration to a course section.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	SectionID  string           `db:"section_id" json:"section_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	Grade      *Grade           `json:"grade,omitempty"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches an enrollment with its section and course.
type EnrollmentDetail struct {
	Enrollment
	Section CourseSection `json:"section"`
	Course  Course        `json:"course"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID  string
	SectionID  string
	SemesterID string
	Status     EnrollmentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
