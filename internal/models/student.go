package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID           string    `db:"id" json:"id"`
	MajorID      string    `db:"major_id" json:"major_id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	EnrolledDate time.Time `db:"enrolled_date" json:"enrolled_date"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the student's display name.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	MajorID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
