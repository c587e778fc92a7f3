package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// StudentRepository provides read access to student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListAll returns every student with their completed course ids attached.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.StudentRecord, error) {
	var students []models.StudentRecord
	if err := r.db.SelectContext(ctx, &students, "SELECT id, full_name FROM students ORDER BY id"); err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return students, nil
	}

	type completionRow struct {
		StudentID string `db:"student_id"`
		CourseID  string `db:"course_id"`
	}
	var completions []completionRow
	if err := r.db.SelectContext(ctx, &completions, "SELECT student_id, course_id FROM student_completed_courses ORDER BY student_id, course_id"); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(students))
	for i, s := range students {
		index[s.ID] = i
	}
	for _, c := range completions {
		if i, ok := index[c.StudentID]; ok {
			students[i].CompletedCourseIDs = append(students[i].CompletedCourseIDs, c.CourseID)
		}
	}
	return students, nil
}
