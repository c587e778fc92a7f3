package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// TeacherRepository provides read access to the teacher catalog.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// ListActive returns active teachers with their specializations and
// availability windows attached.
func (r *TeacherRepository) ListActive(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	query := "SELECT id, full_name, email, max_weekly_hours, active FROM teachers WHERE active = TRUE ORDER BY id"
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return teachers, nil
	}

	type specRow struct {
		TeacherID   string  `db:"teacher_id"`
		Subject     string  `db:"subject"`
		Proficiency float64 `db:"proficiency"`
	}
	var specs []specRow
	if err := r.db.SelectContext(ctx, &specs, "SELECT teacher_id, subject, proficiency FROM teacher_specializations ORDER BY teacher_id, subject"); err != nil {
		return nil, err
	}

	type windowRow struct {
		TeacherID   string `db:"teacher_id"`
		DayOfWeek   int    `db:"day_of_week"`
		StartMinute int    `db:"start_minute"`
		EndMinute   int    `db:"end_minute"`
	}
	var windows []windowRow
	if err := r.db.SelectContext(ctx, &windows, "SELECT teacher_id, day_of_week, start_minute, end_minute FROM teacher_availability ORDER BY teacher_id, day_of_week, start_minute"); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(teachers))
	for i, t := range teachers {
		index[t.ID] = i
	}
	for _, s := range specs {
		if i, ok := index[s.TeacherID]; ok {
			teachers[i].Specializations = append(teachers[i].Specializations, models.SubjectSpecialization{
				Subject:     s.Subject,
				Proficiency: s.Proficiency,
			})
		}
	}
	for _, w := range windows {
		if i, ok := index[w.TeacherID]; ok {
			teachers[i].Availability = append(teachers[i].Availability, models.AvailabilityWindow{
				DayOfWeek:   w.DayOfWeek,
				StartMinute: w.StartMinute,
				EndMinute:   w.EndMinute,
			})
		}
	}
	return teachers, nil
}
