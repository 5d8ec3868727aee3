package models

import (
	"strings"
	"time"
)

// Instructor represents a teaching staff member assigned to meetings.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName renders the instructor's display name.
func (i Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}

// NameMatches reports whether the search string is a prefix of any of the
// four derived name forms: first+last, "first last", first alone, last alone.
func (i Instructor) NameMatches(search string) bool {
	if search == "" {
		return true
	}
	forms := []string{
		i.FirstName + i.LastName,
		i.FirstName + " " + i.LastName,
		i.FirstName,
		i.LastName,
	}
	for _, form := range forms {
		if strings.HasPrefix(form, search) {
			return true
		}
	}
	return false
}
