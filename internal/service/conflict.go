package service

import (
	"sort"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// ConflictKind classifies why a candidate section cannot join a student's
// active enrollment set.
type ConflictKind string

const (
	ConflictNone   ConflictKind = "NONE"
	ConflictCourse ConflictKind = "COURSE_CONFLICT"
	ConflictTime   ConflictKind = "TIME_CONFLICT"
)

// DetectConflict decides whether adding the candidate section to the active
// set is legal. Holding two sections of the same course outranks time
// overlap. Pure: no mutation, no lookups.
func DetectConflict(candidate models.SectionDetail, active []models.SectionDetail) ConflictKind {
	for _, held := range active {
		if held.CourseID == candidate.CourseID {
			return ConflictCourse
		}
	}
	for _, held := range active {
		if candidate.CourseSection.Overlaps(held.CourseSection) {
			return ConflictTime
		}
	}
	return ConflictNone
}

// ConflictingCourses lists the full names of active sections that collide
// with the candidate, sorted for stable output. Used to denormalise search
// entries.
func ConflictingCourses(candidate models.SectionDetail, active []models.SectionDetail) []string {
	var names []string
	for _, held := range active {
		if held.CourseID == candidate.CourseID || candidate.CourseSection.Overlaps(held.CourseSection) {
			names = append(names, held.FullName())
		}
	}
	sort.Strings(names)
	return names
}
