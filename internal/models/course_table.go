package models

import "time"

// CourseTableEntry is one meeting on a student's weekly course table.
type CourseTableEntry struct {
	CourseFullName string    `json:"course_full_name"`
	Instructor     string    `json:"instructor,omitempty"`
	DayOfWeek      DayOfWeek `json:"day_of_week"`
	StartSlot      int       `json:"start_slot"`
	SlotCount      int       `json:"slot_count"`
	Location       string    `json:"location"`
}

// CourseTable is a Monday-to-Sunday view of a student's active meetings for
// one week.
type CourseTable struct {
	WeekStart time.Time                        `json:"week_start"`
	Days      map[DayOfWeek][]CourseTableEntry `json:"days"`
}

// NewCourseTable builds an empty table with all seven days present.
func NewCourseTable(weekStart time.Time) *CourseTable {
	days := make(map[DayOfWeek][]CourseTableEntry, 7)
	for d := Monday; d <= Sunday; d++ {
		days[d] = nil
	}
	return &CourseTable{WeekStart: weekStart, Days: days}
}

// MondayOf returns the Monday of the week containing the given date,
// truncated to midnight UTC.
func MondayOf(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
