package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// TimeSlotRepository provides read access to the time slot catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListActive returns active time slots ordered by day and start time.
func (r *TimeSlotRepository) ListActive(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	query := "SELECT id, day_of_week, start_minute, end_minute, active FROM time_slots WHERE active = TRUE ORDER BY day_of_week, start_minute, id"
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, err
	}
	return slots, nil
}
