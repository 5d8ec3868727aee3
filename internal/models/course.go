package models

import "time"

// CourseClassification categorises a course relative to its owning major.
type CourseClassification string

const (
	ClassificationCompulsory CourseClassification = "COMPULSORY"
	ClassificationElective   CourseClassification = "ELECTIVE"
	ClassificationNone       CourseClassification = "NONE"
)

// Course represents an academic course in the catalogue.
type Course struct {
	ID             string               `db:"id" json:"id"`
	Name           string               `db:"name" json:"name"`
	Credit         float64              `db:"credit" json:"credit"`
	MajorID        *string              `db:"major_id" json:"major_id,omitempty"`
	Classification CourseClassification `db:"classification" json:"classification"`
	Prerequisites  []string             `json:"prerequisites,omitempty"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	MajorID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
