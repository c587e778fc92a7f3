package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ClassroomRepository provides read access to the classroom catalog.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// ListActive returns active classrooms with their equipment attached.
func (r *ClassroomRepository) ListActive(ctx context.Context) ([]models.Classroom, error) {
	var rooms []models.Classroom
	query := "SELECT id, name, capacity, room_type, active FROM classrooms WHERE active = TRUE ORDER BY id"
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	type equipmentRow struct {
		ClassroomID string `db:"classroom_id"`
		Equipment   string `db:"equipment"`
	}
	var equipment []equipmentRow
	if err := r.db.SelectContext(ctx, &equipment, "SELECT classroom_id, equipment FROM classroom_equipment ORDER BY classroom_id, equipment"); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(rooms))
	for i, room := range rooms {
		index[room.ID] = i
	}
	for _, e := range equipment {
		if i, ok := index[e.ClassroomID]; ok {
			rooms[i].Equipment = append(rooms[i].Equipment, e.Equipment)
		}
	}
	return rooms, nil
}
