package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eadms/academic-api/internal/models"
)

const scheduleColumns = `id, teacher_id, course_id, title, description, start_time, end_time, recurrence, location, created_at, updated_at`

// ScheduleRepository handles persistence of schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID returns a schedule entry by its ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE id = $1`, scheduleColumns)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByTeacher returns all entries on a teacher's calendar ordered by start.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE teacher_id = $1 ORDER BY start_time`, scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher schedule: %w", err)
	}
	return entries, nil
}

// ListByTeacherAndRange returns a teacher's entries intersecting [from, to).
func (r *ScheduleRepository) ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries
        WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2 ORDER BY start_time`, scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list teacher schedule range: %w", err)
	}
	return entries, nil
}

// ListByCourse returns entries booked for a course.
func (r *ScheduleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE course_id = $1 ORDER BY start_time`, scheduleColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, courseID); err != nil {
		return nil, fmt.Errorf("list course schedule: %w", err)
	}
	return entries, nil
}

// FindConflicts returns entries on the teacher's calendar whose half-open
// intervals overlap [start, end), ordered by id so the first reported
// conflict is deterministic. excludeID skips the entry being updated.
func (r *ScheduleRepository) FindConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeID string) ([]models.ScheduleEntry, error) {
	return findConflicts(ctx, r.db, teacherID, start, end, excludeID)
}

func findConflicts(ctx context.Context, q sqlx.QueryerContext, teacherID string, start, end time.Time, excludeID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries
        WHERE teacher_id = $1 AND start_time < $3 AND end_time > $2`, scheduleColumns)
	args := []interface{}{teacherID, start, end}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	query += " ORDER BY id"
	var entries []models.ScheduleEntry
	if err := sqlx.SelectContext(ctx, q, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("find schedule conflicts: %w", err)
	}
	return entries, nil
}

// CreateChecked re-runs the conflict check and inserts the entry inside one
// transaction, locking the teacher's calendar rows first. The service-level
// check alone is a check-then-act race under concurrent writers; the row
// lock makes the sequence safe. Returns *models.ScheduleConflictError when
// an overlapping entry exists.
func (r *ScheduleRepository) CreateChecked(ctx context.Context, entry *models.ScheduleEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Recurrence == "" {
		entry.Recurrence = models.RecurrenceNone
	}

	return r.withTeacherLock(ctx, entry.TeacherID, func(tx *sqlx.Tx) error {
		conflicts, err := findConflicts(ctx, tx, entry.TeacherID, entry.StartTime, entry.EndTime, "")
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &models.ScheduleConflictError{Existing: conflicts[0]}
		}
		const query = `INSERT INTO schedule_entries (id, teacher_id, course_id, title, description,
            start_time, end_time, recurrence, location, created_at, updated_at)
            VALUES (:id, :teacher_id, :course_id, :title, :description,
            :start_time, :end_time, :recurrence, :location, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("create schedule entry: %w", err)
		}
		return nil
	})
}

// UpdateChecked rewrites the entry after re-checking conflicts (excluding the
// entry itself) under the same teacher-calendar lock as CreateChecked.
func (r *ScheduleRepository) UpdateChecked(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()

	return r.withTeacherLock(ctx, entry.TeacherID, func(tx *sqlx.Tx) error {
		conflicts, err := findConflicts(ctx, tx, entry.TeacherID, entry.StartTime, entry.EndTime, entry.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &models.ScheduleConflictError{Existing: conflicts[0]}
		}
		return updateEntry(ctx, tx, entry)
	})
}

// Update rewrites the entry without a conflict re-check. Used when the
// interval did not change.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	return updateEntry(ctx, r.db, entry)
}

func updateEntry(ctx context.Context, e sqlx.ExtContext, entry *models.ScheduleEntry) error {
	const query = `UPDATE schedule_entries SET course_id = :course_id, title = :title,
        description = :description, start_time = :start_time, end_time = :end_time,
        recurrence = :recurrence, location = :location, updated_at = :updated_at
        WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, e, query, entry); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_entries WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}

// DeleteByTeacher removes every entry on a teacher's calendar.
func (r *ScheduleRepository) DeleteByTeacher(ctx context.Context, teacherID string) error {
	const query = `DELETE FROM schedule_entries WHERE teacher_id = $1`
	if _, err := r.db.ExecContext(ctx, query, teacherID); err != nil {
		return fmt.Errorf("delete teacher schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) withTeacherLock(ctx context.Context, teacherID string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialises concurrent writers touching the same calendar.
	if _, err := tx.ExecContext(ctx, `SELECT id FROM schedule_entries WHERE teacher_id = $1 FOR UPDATE`, teacherID); err != nil {
		return fmt.Errorf("lock teacher schedule: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule tx: %w", err)
	}
	return nil
}
