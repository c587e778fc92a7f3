package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

// ConflictRepository provides persistence for detected schedule conflicts.
// Inserts are guarded by the deduplication key so concurrent detection
// triggers cannot create duplicate rows; schedule_conflicts additionally
// carries a partial unique index on (dedup_key) WHERE resolution_status =
// 'PENDING' as a backstop.
type ConflictRepository struct {
	db *sqlx.DB
}

// NewConflictRepository creates a new conflict repository.
func NewConflictRepository(db *sqlx.DB) *ConflictRepository {
	return &ConflictRepository{db: db}
}

const conflictColumns = "id, conflict_type, severity, entity_type, entity_id, schedule1_id, schedule2_id, description, detected_at, resolution_status, resolved_at, resolution_notes, created_at, updated_at"

// InsertIfAbsent persists the conflict unless an equivalent one was detected
// within the suppression window. The existence check and the insert run in a
// single statement, making the operation atomic per conflict. Returns true
// when a row was inserted.
func (r *ConflictRepository) InsertIfAbsent(ctx context.Context, conflict *models.ScheduleConflict, window time.Duration) (bool, error) {
	if conflict.ID == "" {
		conflict.ID = uuid.NewString()
	}
	now := time.Now()
	conflict.CreatedAt = now
	conflict.UpdatedAt = now
	if conflict.ResolutionStatus == "" {
		conflict.ResolutionStatus = models.ResolutionPending
	}

	query := `INSERT INTO schedule_conflicts
		(id, conflict_type, severity, entity_type, entity_id, schedule1_id, schedule2_id, description, detected_at, resolution_status, dedup_key, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		WHERE NOT EXISTS (
			SELECT 1 FROM schedule_conflicts
			WHERE dedup_key = $11 AND detected_at > $14
		)`
	result, err := r.db.ExecContext(ctx, query,
		conflict.ID, conflict.Type, conflict.Severity, conflict.EntityType, conflict.EntityID,
		conflict.Schedule1ID, conflict.Schedule2ID, conflict.Description, conflict.DetectedAt,
		conflict.ResolutionStatus, conflict.DedupKey(), conflict.CreatedAt, conflict.UpdatedAt,
		conflict.DetectedAt.Add(-window),
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// FindByID returns one conflict.
func (r *ConflictRepository) FindByID(ctx context.Context, id string) (*models.ScheduleConflict, error) {
	var conflict models.ScheduleConflict
	query := fmt.Sprintf("SELECT %s FROM schedule_conflicts WHERE id = $1", conflictColumns)
	if err := r.db.GetContext(ctx, &conflict, query, id); err != nil {
		return nil, err
	}
	return &conflict, nil
}

// List returns conflicts with optional filtering and pagination.
func (r *ConflictRepository) List(ctx context.Context, filter models.ConflictFilter) ([]models.ScheduleConflict, int, error) {
	base := "FROM schedule_conflicts WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("resolution_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, filter.Severity)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("conflict_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.EntityType != "" {
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)+1))
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)+1))
		args = append(args, filter.EntityID)
	}
	if filter.ScheduleID != "" {
		conditions = append(conditions, fmt.Sprintf("(schedule1_id = $%d OR schedule2_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, filter.ScheduleID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"detected_at": true,
		"severity":    true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "detected_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", conflictColumns, base, sortBy, order, size, offset)
	var conflicts []models.ScheduleConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := "SELECT COUNT(*) " + base
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}
	return conflicts, total, nil
}

// HasPending reports whether any conflict is still pending.
func (r *ConflictRepository) HasPending(ctx context.Context) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM schedule_conflicts WHERE resolution_status = 'PENDING')"
	if err := r.db.GetContext(ctx, &exists, query); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateResolution transitions a conflict's lifecycle state. The update is
// guarded by the expected current status so two racing transitions cannot
// both apply; sql.ErrNoRows reports a lost race or a missing row.
func (r *ConflictRepository) UpdateResolution(ctx context.Context, id string, from, to models.ResolutionStatus, notes *string, resolvedAt *time.Time) error {
	query := `UPDATE schedule_conflicts
		SET resolution_status = $2, resolution_notes = $3, resolved_at = $4, updated_at = $5
		WHERE id = $1 AND resolution_status = $6`
	result, err := r.db.ExecContext(ctx, query, id, to, notes, resolvedAt, time.Now(), from)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates conflict counts by type, severity and status.
func (r *ConflictRepository) Stats(ctx context.Context) (*models.ConflictStats, error) {
	stats := &models.ConflictStats{
		ByType:     make(map[models.ConflictType]int),
		BySeverity: make(map[models.ConflictSeverity]int),
		ByStatus:   make(map[models.ResolutionStatus]int),
	}

	type typeRow struct {
		Type  models.ConflictType `db:"conflict_type"`
		Count int                 `db:"count"`
	}
	var byType []typeRow
	if err := r.db.SelectContext(ctx, &byType, "SELECT conflict_type, COUNT(*) AS count FROM schedule_conflicts GROUP BY conflict_type"); err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ByType[row.Type] = row.Count
		stats.Total += row.Count
	}

	type severityRow struct {
		Severity models.ConflictSeverity `db:"severity"`
		Count    int                     `db:"count"`
	}
	var bySeverity []severityRow
	if err := r.db.SelectContext(ctx, &bySeverity, "SELECT severity, COUNT(*) AS count FROM schedule_conflicts GROUP BY severity"); err != nil {
		return nil, err
	}
	for _, row := range bySeverity {
		stats.BySeverity[row.Severity] = row.Count
	}

	type statusRow struct {
		Status models.ResolutionStatus `db:"resolution_status"`
		Count  int                     `db:"count"`
	}
	var byStatus []statusRow
	if err := r.db.SelectContext(ctx, &byStatus, "SELECT resolution_status, COUNT(*) AS count FROM schedule_conflicts GROUP BY resolution_status"); err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Status] = row.Count
	}
	stats.Pending = stats.ByStatus[models.ResolutionPending]

	return stats, nil
}
