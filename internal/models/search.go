package models

// CourseType classifies a course relative to the searching student's major.
type CourseType string

// Course type filters accepted by section search.
const (
	// CourseTypeAll matches every course.
	CourseTypeAll CourseType = "ALL"
	// CourseTypeMajorCompulsory matches compulsory courses of the student's major.
	CourseTypeMajorCompulsory CourseType = "MAJOR_COMPULSORY"
	// CourseTypeMajorElective matches elective courses of the student's major.
	CourseTypeMajorElective CourseType = "MAJOR_ELECTIVE"
	// CourseTypeCrossMajor matches courses owned by a different major.
	CourseTypeCrossMajor CourseType = "CROSS_MAJOR"
	// CourseTypePublic matches courses not owned by any major.
	CourseTypePublic CourseType = "PUBLIC"
)

// SectionSearchFilter enumerates every optional predicate of the section
// search pipeline. Zero values mean "not applied".
type SectionSearchFilter struct {
	CourseID   string     `json:"course_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Instructor string     `json:"instructor,omitempty"`
	DayOfWeek  *DayOfWeek `json:"day_of_week,omitempty"`
	ClassTime  *int       `json:"class_time,omitempty"`
	Locations  []string   `json:"locations,omitempty"`
	CourseType CourseType `json:"course_type,omitempty"`

	IgnoreFull                 bool `json:"ignore_full,omitempty"`
	IgnoreConflict             bool `json:"ignore_conflict,omitempty"`
	IgnorePassed               bool `json:"ignore_passed,omitempty"`
	IgnoreMissingPrerequisites bool `json:"ignore_missing_prerequisites,omitempty"`

	PageSize  int `json:"page_size"`
	PageIndex int `json:"page_index"`
}

// CourseSearchEntry is one denormalised row of a search result: enough for a
// caller to render an enroll decision without re-querying.
type CourseSearchEntry struct {
	Course            Course        `json:"course"`
	Section           CourseSection `json:"section"`
	FullName          string        `json:"full_name"`
	RemainingCapacity int           `json:"remaining_capacity"`
	ConflictCourses   []string      `json:"conflict_courses,omitempty"`
	PrerequisitesMet  bool          `json:"prerequisites_met"`
	AlreadyPassed     bool          `json:"already_passed"`
}
