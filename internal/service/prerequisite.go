package service

import "github.com/noah-isme/course-reg-api/internal/models"

// PrerequisitesSatisfied reports whether every prerequisite course id appears
// in the passed set. Nil inputs are treated as empty sets, so a course with
// no prerequisites is trivially satisfied.
func PrerequisitesSatisfied(prerequisites []string, passed map[string]struct{}) bool {
	for _, courseID := range prerequisites {
		if _, ok := passed[courseID]; !ok {
			return false
		}
	}
	return true
}

// passedCourseIDs derives the set of course ids the student has passed from
// their full enrollment history.
func passedCourseIDs(history []models.EnrollmentDetail, cutoff float64) map[string]struct{} {
	passed := make(map[string]struct{})
	for _, d := range history {
		if d.Status != models.EnrollmentStatusCompleted {
			continue
		}
		if d.Grade.Passed(cutoff) {
			passed[d.Course.ID] = struct{}{}
		}
	}
	return passed
}

// activeSections projects the ACTIVE entries of an enrollment history onto
// their sections.
func activeSections(history []models.EnrollmentDetail) []models.SectionDetail {
	var sections []models.SectionDetail
	for _, d := range history {
		if d.Status != models.EnrollmentStatusActive {
			continue
		}
		sections = append(sections, models.SectionDetail{CourseSection: d.Section, Course: d.Course})
	}
	return sections
}
