package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-reg-api/internal/models"
)

// SectionRepository reads course sections with their meetings and parent
// courses, serving the engine's snapshot-read contract.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

type sectionDetailRow struct {
	ID             string                      `db:"id"`
	CourseID       string                      `db:"course_id"`
	SemesterID     string                      `db:"semester_id"`
	Name           string                      `db:"name"`
	Capacity       int                         `db:"capacity"`
	CourseName     string                      `db:"course_name"`
	Credit         float64                     `db:"credit"`
	CourseMajorID  *string                     `db:"course_major_id"`
	Classification models.CourseClassification `db:"classification"`
}

const sectionDetailSelect = `SELECT s.id, s.course_id, s.semester_id, s.name, s.capacity,
c.name AS course_name, c.credit, c.major_id AS course_major_id, c.classification
FROM sections s
JOIN courses c ON c.id = s.course_id`

// FindDetailByID returns one section joined with its course, meetings and
// prerequisite list. Returns sql.ErrNoRows when the section does not exist.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	var row sectionDetailRow
	query := sectionDetailSelect + ` WHERE s.id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	meetings, err := loadMeetings(ctx, r.db, []string{row.ID})
	if err != nil {
		return nil, err
	}
	prerequisites, err := loadPrerequisites(ctx, r.db, []string{row.CourseID})
	if err != nil {
		return nil, err
	}
	detail := row.toDetail(meetings, prerequisites)
	return &detail, nil
}

// ListDetailsBySemester returns every section offered in a semester.
func (r *SectionRepository) ListDetailsBySemester(ctx context.Context, semesterID string) ([]models.SectionDetail, error) {
	var rows []sectionDetailRow
	query := sectionDetailSelect + ` WHERE s.semester_id = $1 ORDER BY s.course_id, s.id`
	if err := r.db.SelectContext(ctx, &rows, query, semesterID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sectionIDs := make([]string, 0, len(rows))
	courseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		sectionIDs = append(sectionIDs, row.ID)
		courseIDs = append(courseIDs, row.CourseID)
	}
	meetings, err := loadMeetings(ctx, r.db, sectionIDs)
	if err != nil {
		return nil, err
	}
	prerequisites, err := loadPrerequisites(ctx, r.db, courseIDs)
	if err != nil {
		return nil, err
	}
	details := make([]models.SectionDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.toDetail(meetings, prerequisites))
	}
	return details, nil
}

func (r sectionDetailRow) toDetail(meetings map[string][]models.Meeting, prerequisites map[string][]string) models.SectionDetail {
	return models.SectionDetail{
		CourseSection: models.CourseSection{
			ID:         r.ID,
			CourseID:   r.CourseID,
			SemesterID: r.SemesterID,
			Name:       r.Name,
			Capacity:   r.Capacity,
			Meetings:   meetings[r.ID],
		},
		Course: models.Course{
			ID:             r.CourseID,
			Name:           r.CourseName,
			Credit:         r.Credit,
			MajorID:        r.CourseMajorID,
			Classification: r.Classification,
			Prerequisites:  prerequisites[r.CourseID],
		},
	}
}

// loadMeetings fetches meetings for the given sections keyed by section id.
func loadMeetings(ctx context.Context, db *sqlx.DB, sectionIDs []string) (map[string][]models.Meeting, error) {
	query, args, err := sqlx.In(`SELECT id, section_id, instructor_id, day_of_week, start_slot, slot_count, location
FROM meetings WHERE section_id IN (?) ORDER BY section_id, day_of_week, start_slot`, sectionIDs)
	if err != nil {
		return nil, err
	}
	query = db.Rebind(query)
	var meetings []models.Meeting
	if err := db.SelectContext(ctx, &meetings, query, args...); err != nil {
		return nil, err
	}
	bySection := make(map[string][]models.Meeting, len(sectionIDs))
	for _, m := range meetings {
		bySection[m.SectionID] = append(bySection[m.SectionID], m)
	}
	return bySection, nil
}

type prerequisiteRow struct {
	CourseID       string `db:"course_id"`
	PrerequisiteID string `db:"prerequisite_id"`
}

// loadPrerequisites fetches prerequisite course ids keyed by course id.
func loadPrerequisites(ctx context.Context, db *sqlx.DB, courseIDs []string) (map[string][]string, error) {
	query, args, err := sqlx.In(`SELECT course_id, prerequisite_id FROM course_prerequisites
WHERE course_id IN (?) ORDER BY course_id, prerequisite_id`, courseIDs)
	if err != nil {
		return nil, err
	}
	query = db.Rebind(query)
	var rows []prerequisiteRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	byCourse := make(map[string][]string, len(courseIDs))
	for _, row := range rows {
		byCourse[row.CourseID] = append(byCourse[row.CourseID], row.PrerequisiteID)
	}
	return byCourse, nil
}
