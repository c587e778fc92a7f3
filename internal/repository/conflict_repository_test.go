package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func newConflictRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleConflict() *models.ScheduleConflict {
	entityType := models.EntityTeacher
	entityID := "teacher-1"
	s1 := "sched-1"
	s2 := "sched-2"
	return &models.ScheduleConflict{
		Type:        models.ConflictTeacherDoubleBooking,
		Severity:    models.SeverityHigh,
		EntityType:  &entityType,
		EntityID:    &entityID,
		Schedule1ID: &s1,
		Schedule2ID: &s2,
		Description: "teacher teacher-1 booked for overlapping schedules",
		DetectedAt:  time.Now(),
	}
}

func TestConflictRepositoryInsertIfAbsentInserts(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec("INSERT INTO schedule_conflicts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	conflict := sampleConflict()
	inserted, err := repo.InsertIfAbsent(context.Background(), conflict, time.Hour)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotEmpty(t, conflict.ID, "missing id must be generated")
	assert.Equal(t, models.ResolutionPending, conflict.ResolutionStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryInsertIfAbsentSuppressesDuplicate(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectExec("INSERT INTO schedule_conflicts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), sampleConflict(), time.Hour)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryList(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	rows := sqlmock.NewRows([]string{"id", "conflict_type", "severity", "entity_type", "entity_id", "schedule1_id", "schedule2_id", "description", "detected_at", "resolution_status", "resolved_at", "resolution_notes", "created_at", "updated_at"}).
		AddRow("c1", "TEACHER_DOUBLE_BOOKING", "HIGH", "TEACHER", "teacher-1", "sched-1", "sched-2", "overlap", time.Now(), "PENDING", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+conflictColumns+" FROM schedule_conflicts WHERE 1=1 AND resolution_status = $1 ORDER BY detected_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("PENDING").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_conflicts WHERE 1=1 AND resolution_status = $1")).
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ConflictFilter{Status: models.ResolutionPending})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryListByScheduleMatchesEitherSide(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("(schedule1_id = $1 OR schedule2_id = $1)")).
		WithArgs("sched-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("sched-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.ConflictFilter{ScheduleID: "sched-1"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryHasPending(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM schedule_conflicts WHERE resolution_status = 'PENDING')")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	pending, err := repo.HasPending(context.Background())
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryUpdateResolution(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	notes := "moved lecture to room 2"
	resolvedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND resolution_status = $6")).
		WithArgs("c1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), string(models.ResolutionPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateResolution(context.Background(), "c1", models.ResolutionPending, models.ResolutionResolved, &notes, &resolvedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryUpdateResolutionStaleStatus(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	notes := "again"
	mock.ExpectExec("UPDATE schedule_conflicts").
		WithArgs("c1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateResolution(context.Background(), "c1", models.ResolutionPending, models.ResolutionResolved, &notes, nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictRepositoryStats(t *testing.T) {
	db, mock, cleanup := newConflictRepoMock(t)
	defer cleanup()
	repo := NewConflictRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT conflict_type, COUNT(*) AS count FROM schedule_conflicts GROUP BY conflict_type")).
		WillReturnRows(sqlmock.NewRows([]string{"conflict_type", "count"}).
			AddRow("TEACHER_DOUBLE_BOOKING", 2).
			AddRow("CAPACITY_EXCEEDED", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT severity, COUNT(*) AS count FROM schedule_conflicts GROUP BY severity")).
		WillReturnRows(sqlmock.NewRows([]string{"severity", "count"}).
			AddRow("HIGH", 2).
			AddRow("MEDIUM", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT resolution_status, COUNT(*) AS count FROM schedule_conflicts GROUP BY resolution_status")).
		WillReturnRows(sqlmock.NewRows([]string{"resolution_status", "count"}).
			AddRow("PENDING", 2).
			AddRow("RESOLVED", 1))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 2, stats.ByType[models.ConflictTeacherDoubleBooking])
	assert.Equal(t, 1, stats.ByStatus[models.ResolutionResolved])
	assert.NoError(t, mock.ExpectationsWereMet())
}
