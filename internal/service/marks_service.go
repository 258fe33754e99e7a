package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type marksRepository interface {
	List(ctx context.Context, filter models.MarksFilter) ([]models.MarksRecord, int, error)
	Upsert(ctx context.Context, record *models.MarksRecord) error
}

// RecordMarksRequest stores a student's score for one exam. Recording the
// same (student, course, exam type, exam date) again overwrites the score.
type RecordMarksRequest struct {
	StudentID     string    `json:"student_id" validate:"required"`
	CourseID      string    `json:"course_id" validate:"required"`
	ExamType      string    `json:"exam_type" validate:"required"`
	ExamDate      time.Time `json:"exam_date" validate:"required"`
	MarksObtained float64   `json:"marks_obtained" validate:"min=0"`
	MaxMarks      float64   `json:"max_marks" validate:"required,gt=0"`
	Remarks       *string   `json:"remarks"`
}

// MarksService records exam scores.
type MarksService struct {
	repo        marksRepository
	enrollments activeEnrollmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewMarksService instantiates MarksService.
func NewMarksService(repo marksRepository, enrollments activeEnrollmentChecker, validate *validator.Validate, logger *zap.Logger) *MarksService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarksService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns marks records matching the filter together with the total
// count.
func (s *MarksService) List(ctx context.Context, filter models.MarksFilter) ([]models.MarksRecord, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks records")
	}
	return records, total, nil
}

// Record upserts an exam score. The obtained marks may not exceed the
// maximum and the student must hold an active enrollment in the course.
func (s *MarksService) Record(ctx context.Context, req RecordMarksRequest) (*models.MarksRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}
	if req.MarksObtained > req.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks obtained cannot exceed maximum marks")
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

	record := &models.MarksRecord{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		ExamType:      req.ExamType,
		ExamDate:      dateOnly(req.ExamDate),
		MarksObtained: req.MarksObtained,
		MaxMarks:      req.MaxMarks,
		Remarks:       req.Remarks,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record marks")
	}
	return record, nil
}
