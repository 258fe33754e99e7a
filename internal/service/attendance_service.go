package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
}

type activeEnrollmentChecker interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

// dateOnly keeps the wall-clock calendar day of t. Truncating absolute time
// instead would shift timestamps with a non-UTC offset onto the wrong day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordAttendanceRequest marks a student's presence for one session. A
// second record for the same (student, course, date) overwrites the first.
type RecordAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	CourseID  string                  `json:"course_id" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Remarks   *string                 `json:"remarks"`
}

// BulkAttendanceEntry is one student's status within a bulk submission.
type BulkAttendanceEntry struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Remarks   *string                 `json:"remarks"`
}

// BulkRecordAttendanceRequest records a whole session in one call.
type BulkRecordAttendanceRequest struct {
	CourseID string                `json:"course_id" validate:"required"`
	Date     time.Time             `json:"date" validate:"required"`
	Entries  []BulkAttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceService records daily attendance per course.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments activeEnrollmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService instantiates AttendanceService.
func NewAttendanceService(repo attendanceRepository, enrollments activeEnrollmentChecker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns attendance records matching the filter together with the
// total count.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance records")
	}
	return records, total, nil
}

// Record upserts an attendance record. The student must hold an active
// enrollment in the course.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}
	active, err := s.enrollments.ListActiveByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student enrollments")
	}
	enrolled := false
	for _, e := range active {
		if e.CourseID == req.CourseID {
			enrolled = true
			break
		}
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student has no active enrollment in this course")
	}

	record := &models.AttendanceRecord{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Date:      dateOnly(req.Date),
		Status:    req.Status,
		Remarks:   req.Remarks,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// RecordBulk records one session for every listed student. The whole batch
// is rejected on the first invalid entry.
func (s *AttendanceService) RecordBulk(ctx context.Context, req BulkRecordAttendanceRequest) ([]models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk attendance payload")
	}
	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		record, err := s.Record(ctx, RecordAttendanceRequest{
			StudentID: entry.StudentID,
			CourseID:  req.CourseID,
			Date:      req.Date,
			Status:    entry.Status,
			Remarks:   entry.Remarks,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}
