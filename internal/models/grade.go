package models

// GradeKind discriminates the grade variants a section may use.
type GradeKind string

const (
	// GradeKindNumeric is a hundred-mark score.
	GradeKindNumeric GradeKind = "NUMERIC"
	// GradeKindPassFail is a binary pass-or-fail mark.
	GradeKindPassFail GradeKind = "PASS_FAIL"
)

// DefaultPassCutoff is the numeric score at or above which a course counts
// as passed.
const DefaultPassCutoff = 60.0

// Grade is a tagged variant: either a numeric score or a pass/fail flag.
// An absent grade is represented by a nil *Grade.
type Grade struct {
	Kind  GradeKind `db:"kind" json:"kind"`
	Score float64   `db:"score" json:"score,omitempty"`
	Pass  bool      `db:"pass" json:"pass,omitempty"`
}

// NumericGrade builds a hundred-mark grade.
func NumericGrade(score float64) *Grade {
	return &Grade{Kind: GradeKindNumeric, Score: score}
}

// PassFailGrade builds a pass-or-fail grade.
func PassFailGrade(pass bool) *Grade {
	return &Grade{Kind: GradeKindPassFail, Pass: pass}
}

// Passed reports whether the grade meets the passing threshold. A nil grade
// never passes.
func (g *Grade) Passed(cutoff float64) bool {
	if g == nil {
		return false
	}
	switch g.Kind {
	case GradeKindNumeric:
		return g.Score >= cutoff
	case GradeKindPassFail:
		return g.Pass
	default:
		return false
	}
}

// CourseGrade pairs an enrolled course with its grade for transcript views.
// Grade is nil while the enrollment is ungraded.
type CourseGrade struct {
	Course     Course `json:"course"`
	SemesterID string `json:"semester_id"`
	Grade      *Grade `json:"grade,omitempty"`
}
