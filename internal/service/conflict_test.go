package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-reg-api/internal/models"
)

func sectionWith(courseID, courseName, sectionName string, meetings ...models.Meeting) models.SectionDetail {
	return models.SectionDetail{
		CourseSection: models.CourseSection{
			ID:       courseID + "-" + sectionName,
			CourseID: courseID,
			Name:     sectionName,
			Meetings: meetings,
		},
		Course: models.Course{ID: courseID, Name: courseName},
	}
}

func TestDetectConflictNone(t *testing.T) {
	candidate := sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2})
	active := []models.SectionDetail{
		sectionWith("ma101", "Calculus", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 3, SlotCount: 2}),
	}
	assert.Equal(t, ConflictNone, DetectConflict(candidate, active))
}

func TestDetectConflictSameCourse(t *testing.T) {
	candidate := sectionWith("cs101", "Intro", "B", models.Meeting{DayOfWeek: models.Friday, StartSlot: 1, SlotCount: 2})
	active := []models.SectionDetail{
		sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2}),
	}
	assert.Equal(t, ConflictCourse, DetectConflict(candidate, active))
}

func TestDetectConflictTime(t *testing.T) {
	candidate := sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 2, SlotCount: 2})
	active := []models.SectionDetail{
		sectionWith("ma101", "Calculus", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 3, SlotCount: 2}),
	}
	assert.Equal(t, ConflictTime, DetectConflict(candidate, active))
}

func TestDetectConflictCourseOutranksTime(t *testing.T) {
	// The same slot is held by another section of the same course: the
	// course conflict must win.
	candidate := sectionWith("cs101", "Intro", "B", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2})
	active := []models.SectionDetail{
		sectionWith("ma101", "Calculus", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2}),
		sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Tuesday, StartSlot: 1, SlotCount: 2}),
	}
	assert.Equal(t, ConflictCourse, DetectConflict(candidate, active))
}

func TestDetectConflictDifferentLocationStillConflicts(t *testing.T) {
	candidate := sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2, Location: "A-101"})
	active := []models.SectionDetail{
		sectionWith("ma101", "Calculus", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2, Location: "B-202"}),
	}
	assert.Equal(t, ConflictTime, DetectConflict(candidate, active))
}

func TestConflictingCoursesSorted(t *testing.T) {
	candidate := sectionWith("cs101", "Intro", "B", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2})
	active := []models.SectionDetail{
		sectionWith("ma101", "Calculus", "A", models.Meeting{DayOfWeek: models.Monday, StartSlot: 1, SlotCount: 2}),
		sectionWith("cs101", "Intro", "A", models.Meeting{DayOfWeek: models.Friday, StartSlot: 1, SlotCount: 2}),
		sectionWith("ph101", "Physics", "A", models.Meeting{DayOfWeek: models.Tuesday, StartSlot: 1, SlotCount: 2}),
	}
	assert.Equal(t, []string{"Calculus[A]", "Intro[A]"}, ConflictingCourses(candidate, active))
}
