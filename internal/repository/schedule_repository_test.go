package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/eadms/academic-api/internal/models"
)

var scheduleTestColumns = []string{"id", "teacher_id", "course_id", "title", "description",
	"start_time", "end_time", "recurrence", "location", "created_at", "updated_at"}

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleRow(rows *sqlmock.Rows, id, teacherID, title string, start, end time.Time) *sqlmock.Rows {
	return rows.AddRow(id, teacherID, "crs-1", title, nil, start, end, models.RecurrenceNone, nil, start, start)
}

func TestScheduleRepositoryFindConflicts(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows(scheduleTestColumns)
	scheduleRow(rows, "sch-1", "tch-1", "Algebra", start, end)
	scheduleRow(rows, "sch-2", "tch-1", "Geometry", start.Add(30*time.Minute), end.Add(30*time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 ORDER BY id")).
		WithArgs("tch-1", start, end).
		WillReturnRows(rows)

	conflicts, err := repo.FindConflicts(context.Background(), "tch-1", start, end, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	require.Equal(t, "sch-1", conflicts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindConflictsExcludesEntry(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 AND id <> $4 ORDER BY id")).
		WithArgs("tch-1", start, end, "sch-1").
		WillReturnRows(sqlmock.NewRows(scheduleTestColumns))

	conflicts, err := repo.FindConflicts(context.Background(), "tch-1", start, end, "sch-1")
	require.NoError(t, err)
	require.Empty(t, conflicts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateChecked(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &models.ScheduleEntry{
		TeacherID: "tch-1",
		CourseID:  "crs-1",
		Title:     "Algebra",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT id FROM schedule_entries WHERE teacher_id = $1 FOR UPDATE")).
		WithArgs("tch-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 ORDER BY id")).
		WithArgs("tch-1", entry.StartTime, entry.EndTime).
		WillReturnRows(sqlmock.NewRows(scheduleTestColumns))
	mock.ExpectExec("INSERT INTO schedule_entries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateChecked(context.Background(), entry)
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, models.RecurrenceNone, entry.Recurrence)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateCheckedConflict(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &models.ScheduleEntry{
		TeacherID: "tch-1",
		CourseID:  "crs-1",
		Title:     "Algebra",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	rows := sqlmock.NewRows(scheduleTestColumns)
	scheduleRow(rows, "sch-9", "tch-1", "Geometry", start, start.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT id FROM schedule_entries WHERE teacher_id = $1 FOR UPDATE")).
		WithArgs("tch-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 ORDER BY id")).
		WithArgs("tch-1", entry.StartTime, entry.EndTime).
		WillReturnRows(rows)
	mock.ExpectRollback()

	err := repo.CreateChecked(context.Background(), entry)
	var conflict *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "sch-9", conflict.Existing.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpdateCheckedConflict(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := &models.ScheduleEntry{
		ID:        "sch-1",
		TeacherID: "tch-1",
		CourseID:  "crs-1",
		Title:     "Algebra",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	rows := sqlmock.NewRows(scheduleTestColumns)
	scheduleRow(rows, "sch-2", "tch-1", "Geometry", start, start.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT id FROM schedule_entries WHERE teacher_id = $1 FOR UPDATE")).
		WithArgs("tch-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 AND id <> $4 ORDER BY id")).
		WithArgs("tch-1", entry.StartTime, entry.EndTime, "sch-1").
		WillReturnRows(rows)
	mock.ExpectRollback()

	err := repo.UpdateChecked(context.Background(), entry)
	var conflict *models.ScheduleConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "sch-2", conflict.Existing.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
