package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryList(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "offering_id", "teacher_id", "classroom_id", "time_slot_id", "scheduled_date", "created_at", "updated_at"}).
		AddRow("sched-1", "off-1", "teacher-1", "room-1", "slot-1", time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+scheduleColumns+" FROM schedules WHERE 1=1 AND teacher_id = $1 ORDER BY scheduled_date ASC LIMIT 20 OFFSET 0")).
		WithArgs("teacher-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1 AND teacher_id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))

	schedule := &models.Schedule{OfferingID: "off-1", TeacherID: "teacher-1", ClassroomID: "room-1", TimeSlotID: "slot-1", Date: time.Now()}
	require.NoError(t, repo.Create(context.Background(), schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkCreateTxRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	schedules := []models.Schedule{
		{OfferingID: "off-1", TeacherID: "teacher-1", ClassroomID: "room-1", TimeSlotID: "slot-1", Date: time.Now()},
		{OfferingID: "off-2", TeacherID: "teacher-2", ClassroomID: "room-2", TimeSlotID: "slot-2", Date: time.Now()},
	}
	err = repo.BulkCreateTx(context.Background(), tx, schedules)
	require.Error(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "offering_id", "teacher_id", "classroom_id", "time_slot_id", "scheduled_date", "created_at", "updated_at"}).
		AddRow("sched-1", "off-1", "teacher-1", "room-1", "slot-1", time.Now(), time.Now(), time.Now()).
		AddRow("sched-2", "off-2", "teacher-2", "room-2", "slot-2", time.Now(), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+scheduleColumns+" FROM schedules ORDER BY scheduled_date, id")).
		WillReturnRows(rows)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
