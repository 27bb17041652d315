package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/activity-tracker-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
	}
	return sqlxDB, mock, cleanup
}

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestDailyActivityRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyActivityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "master_activity_id", "activity_date", "status", "position", "remark", "created_at", "updated_at", "title", "description"}).
		AddRow("da-1", "m-1", day, "pending", 0, nil, now, now, "Backup Check", nil).
		AddRow("da-2", "m-2", day, "done", 1, "ok", now, now, "Daily SMS Count Comparison", "compare counts")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE da.activity_date = $1")).
		WithArgs(day).
		WillReturnRows(rows)

	items, err := repo.ListByDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Backup Check", items[0].Title)
	assert.Equal(t, models.ActivityStatusDone, items[1].Status)
	require.NotNil(t, items[1].Remark)
	assert.Equal(t, "ok", *items[1].Remark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyActivityRepositoryMaterializeSkipsExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyActivityRepository(db)

	insert := regexp.QuoteMeta("INSERT INTO daily_activities")
	mock.ExpectBegin()
	mock.ExpectQuery(insert).
		WithArgs(sqlmock.AnyArg(), "m-1", day, models.ActivityStatusPending, 0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("da-1"))
	mock.ExpectQuery(insert).
		WithArgs(sqlmock.AnyArg(), "m-2", day, models.ActivityStatusPending, 1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(insert).
		WithArgs(sqlmock.AnyArg(), "m-3", day, models.ActivityStatusPending, 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("da-3"))
	mock.ExpectCommit()

	created, err := repo.Materialize(context.Background(), day, []string{"m-1", "m-2", "m-3"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyActivityRepositoryMaterializeNoMasters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyActivityRepository(db)

	created, err := repo.Materialize(context.Background(), day, nil)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyActivityRepositoryApplyMoveScopesByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyActivityRepository(db)

	update := regexp.QuoteMeta("UPDATE daily_activities SET status = $3, position = $4")
	mock.ExpectExec(update).
		WithArgs("da-1", day, models.ActivityStatusDone, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).
		WithArgs("da-other-day", day, models.ActivityStatusDone, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := repo.ApplyMove(context.Background(), "da-1", day, models.ActivityStatusDone, 0)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.ApplyMove(context.Background(), "da-other-day", day, models.ActivityStatusDone, 1)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyActivityRepositoryCountActiveByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN master_activities ma ON ma.id = da.master_activity_id\nWHERE da.activity_date = $1 AND ma.active = TRUE")).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountActiveByDate(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
