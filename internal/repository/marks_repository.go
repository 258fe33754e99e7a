package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eadms/academic-api/internal/models"
)

const marksColumns = `id, student_id, course_id, exam_type, exam_date, marks_obtained, max_marks, remarks, created_at, updated_at`

// MarksRepository handles persistence of exam marks.
type MarksRepository struct {
	db *sqlx.DB
}

// NewMarksRepository constructs the repository.
func NewMarksRepository(db *sqlx.DB) *MarksRepository {
	return &MarksRepository{db: db}
}

// List returns marks filtered by the provided criteria.
func (r *MarksRepository) List(ctx context.Context, filter models.MarksFilter) ([]models.MarksRecord, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.ExamType != "" {
		conditions = append(conditions, fmt.Sprintf("exam_type = $%d", len(args)+1))
		args = append(args, filter.ExamType)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf(`SELECT %s FROM marks_records%s ORDER BY exam_date DESC LIMIT %d OFFSET %d`,
		marksColumns, clause, size, offset)

	var records []models.MarksRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list marks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM marks_records%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count marks: %w", err)
	}
	return records, total, nil
}

// Upsert writes a marks record, replacing the score when the student already
// has a record for the same course, exam type and date.
func (r *MarksRepository) Upsert(ctx context.Context, record *models.MarksRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO marks_records (id, student_id, course_id, exam_type, exam_date,
        marks_obtained, max_marks, remarks, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :exam_type, :exam_date,
        :marks_obtained, :max_marks, :remarks, :created_at, :updated_at)
        ON CONFLICT (student_id, course_id, exam_type, exam_date)
        DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, max_marks = EXCLUDED.max_marks,
        remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert marks: %w", err)
	}
	return nil
}

// ListByStudentAndCourse returns a student's marks for one course.
func (r *MarksRepository) ListByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]models.MarksRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM marks_records WHERE student_id = $1 AND course_id = $2 ORDER BY exam_date`, marksColumns)
	var records []models.MarksRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list student course marks: %w", err)
	}
	return records, nil
}

// ListByCourse returns all marks recorded for a course.
func (r *MarksRepository) ListByCourse(ctx context.Context, courseID string) ([]models.MarksRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM marks_records WHERE course_id = $1 ORDER BY exam_date`, marksColumns)
	var records []models.MarksRecord
	if err := r.db.SelectContext(ctx, &records, query, courseID); err != nil {
		return nil, fmt.Errorf("list course marks: %w", err)
	}
	return records, nil
}

// DeleteByStudent removes all marks belonging to a student.
func (r *MarksRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	const query = `DELETE FROM marks_records WHERE student_id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("delete student marks: %w", err)
	}
	return nil
}
