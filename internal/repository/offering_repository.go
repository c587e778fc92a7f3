package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// OfferingRepository provides read access to course offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository creates a new offering repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// ListByTerm returns the offerings of a term with prerequisites, required
// equipment and enrolled student ids attached.
func (r *OfferingRepository) ListByTerm(ctx context.Context, termID string) ([]models.CourseOffering, error) {
	var offerings []models.CourseOffering
	query := `SELECT id, course_id, course_code, title, subject, max_enrollment, enrollment, required_room_type
		FROM course_offerings WHERE term_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &offerings, query, termID); err != nil {
		return nil, err
	}
	if len(offerings) == 0 {
		return offerings, nil
	}

	index := make(map[string]int, len(offerings))
	courseIndex := make(map[string][]int)
	for i, o := range offerings {
		index[o.ID] = i
		courseIndex[o.CourseID] = append(courseIndex[o.CourseID], i)
	}

	type prereqRow struct {
		CourseID       string `db:"course_id"`
		PrerequisiteID string `db:"prerequisite_course_id"`
	}
	var prereqs []prereqRow
	if err := r.db.SelectContext(ctx, &prereqs, "SELECT course_id, prerequisite_course_id FROM course_prerequisites ORDER BY course_id, prerequisite_course_id"); err != nil {
		return nil, err
	}
	for _, p := range prereqs {
		for _, i := range courseIndex[p.CourseID] {
			offerings[i].PrerequisiteIDs = append(offerings[i].PrerequisiteIDs, p.PrerequisiteID)
		}
	}

	type equipmentRow struct {
		OfferingID string `db:"offering_id"`
		Equipment  string `db:"equipment"`
	}
	var equipment []equipmentRow
	if err := r.db.SelectContext(ctx, &equipment, "SELECT offering_id, equipment FROM offering_equipment ORDER BY offering_id, equipment"); err != nil {
		return nil, err
	}
	for _, e := range equipment {
		if i, ok := index[e.OfferingID]; ok {
			offerings[i].RequiredEquipment = append(offerings[i].RequiredEquipment, e.Equipment)
		}
	}

	type enrollmentRow struct {
		OfferingID string `db:"offering_id"`
		StudentID  string `db:"student_id"`
	}
	var enrollments []enrollmentRow
	if err := r.db.SelectContext(ctx, &enrollments, "SELECT offering_id, student_id FROM offering_enrollments ORDER BY offering_id, student_id"); err != nil {
		return nil, err
	}
	for _, e := range enrollments {
		if i, ok := index[e.OfferingID]; ok {
			offerings[i].StudentIDs = append(offerings[i].StudentIDs, e.StudentID)
		}
	}

	return offerings, nil
}
