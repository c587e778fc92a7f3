package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ScheduleRepository provides persistence for committed schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, offering_id, teacher_id, classroom_id, time_slot_id, scheduled_date, created_at, updated_at"

// List returns committed schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.OfferingID != "" {
		conditions = append(conditions, fmt.Sprintf("offering_id = $%d", len(args)+1))
		args = append(args, filter.OfferingID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassroomID != "" {
		conditions = append(conditions, fmt.Sprintf("classroom_id = $%d", len(args)+1))
		args = append(args, filter.ClassroomID)
	}
	if filter.TimeSlotID != "" {
		conditions = append(conditions, fmt.Sprintf("time_slot_id = $%d", len(args)+1))
		args = append(args, filter.TimeSlotID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"scheduled_date": true,
		"teacher_id":     true,
		"classroom_id":   true,
		"created_at":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "scheduled_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := "SELECT COUNT(*) " + base
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

// ListAll returns every committed schedule, used by the full-system sweep.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	query := fmt.Sprintf("SELECT %s FROM schedules ORDER BY scheduled_date, id", scheduleColumns)
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindByID returns one schedule.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	var schedule models.Schedule
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create inserts a new committed schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	query := `INSERT INTO schedules (id, offering_id, teacher_id, classroom_id, time_slot_id, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.OfferingID, schedule.TeacherID, schedule.ClassroomID,
		schedule.TimeSlotID, schedule.Date, schedule.CreatedAt, schedule.UpdatedAt,
	)
	return err
}

// BulkCreateTx inserts schedules inside an existing transaction, used when
// committing a solved assignment atomically.
func (r *ScheduleRepository) BulkCreateTx(ctx context.Context, tx *sqlx.Tx, schedules []models.Schedule) error {
	query := `INSERT INTO schedules (id, offering_id, teacher_id, classroom_id, time_slot_id, scheduled_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now()
	for i := range schedules {
		if schedules[i].ID == "" {
			schedules[i].ID = uuid.NewString()
		}
		schedules[i].CreatedAt = now
		schedules[i].UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query,
			schedules[i].ID, schedules[i].OfferingID, schedules[i].TeacherID, schedules[i].ClassroomID,
			schedules[i].TimeSlotID, schedules[i].Date, schedules[i].CreatedAt, schedules[i].UpdatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a committed schedule.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	return err
}
