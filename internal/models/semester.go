package models

import "time"

// Semester models one academic semester in the institution calendar.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the date falls inside the semester, inclusive of
// both boundary dates.
func (s Semester) Covers(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(s.StartDate.Truncate(24*time.Hour)) &&
		!day.After(s.EndDate.Truncate(24*time.Hour))
}
