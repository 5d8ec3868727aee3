package models

import (
	"fmt"
	"time"
)

// DayOfWeek numbers the week Monday-first, matching the academic calendar.
type DayOfWeek int

// Week days, Monday through Sunday.
const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = map[DayOfWeek]string{
	Monday:    "MONDAY",
	Tuesday:   "TUESDAY",
	Wednesday: "WEDNESDAY",
	Thursday:  "THURSDAY",
	Friday:    "FRIDAY",
	Saturday:  "SATURDAY",
	Sunday:    "SUNDAY",
}

// String returns the upper-case day name, or the numeric value when unknown.
func (d DayOfWeek) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DAY(%d)", int(d))
}

// Valid reports whether the value names an actual weekday.
func (d DayOfWeek) Valid() bool {
	return d >= Monday && d <= Sunday
}

// FromWeekday converts time.Weekday (Sunday-first) to Monday-first numbering.
func FromWeekday(w time.Weekday) DayOfWeek {
	if w == time.Sunday {
		return Sunday
	}
	return DayOfWeek(int(w))
}

// Meeting is a single recurring weekly class slot of a section.
type Meeting struct {
	ID           string    `db:"id" json:"id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartSlot    int       `db:"start_slot" json:"start_slot"`
	SlotCount    int       `db:"slot_count" json:"slot_count"`
	Location     string    `db:"location" json:"location"`
}

// Overlaps reports whether two meetings collide: same weekday and
// intersecting [start, start+count) slot ranges.
func (m Meeting) Overlaps(other Meeting) bool {
	if m.DayOfWeek != other.DayOfWeek {
		return false
	}
	return m.StartSlot < other.StartSlot+other.SlotCount &&
		other.StartSlot < m.StartSlot+m.SlotCount
}

// Contains reports whether the meeting covers the given time slot.
func (m Meeting) Contains(slot int) bool {
	return slot >= m.StartSlot && slot < m.StartSlot+m.SlotCount
}

// CourseSection is one offered instance of a course in a semester.
type CourseSection struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Meetings   []Meeting `json:"meetings,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether any meeting of the section collides with any
// meeting of the other section.
func (s CourseSection) Overlaps(other CourseSection) bool {
	for _, a := range s.Meetings {
		for _, b := range other.Meetings {
			if a.Overlaps(b) {
				return true
			}
		}
	}
	return false
}

// SectionDetail joins a section with its parent course.
type SectionDetail struct {
	CourseSection
	Course Course `json:"course"`
}

// FullName renders the "course.name[section.name]" composite used for
// display and name search.
func (d SectionDetail) FullName() string {
	return fmt.Sprintf("%s[%s]", d.Course.Name, d.Name)
}

// SectionFilter defines filter criteria for listing sections.
type SectionFilter struct {
	CourseID   string
	SemesterID string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
