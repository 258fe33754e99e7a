package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type scheduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error)
	ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.ScheduleEntry, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleEntry, error)
	FindConflicts(ctx context.Context, teacherID string, start, end time.Time, excludeID string) ([]models.ScheduleEntry, error)
	CreateChecked(ctx context.Context, entry *models.ScheduleEntry) error
	UpdateChecked(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// CreateScheduleRequest describes payload for creating a schedule entry.
type CreateScheduleRequest struct {
	TeacherID   string                `json:"teacher_id" validate:"required"`
	CourseID    string                `json:"course_id" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Description *string               `json:"description"`
	StartTime   time.Time             `json:"start_time" validate:"required"`
	EndTime     time.Time             `json:"end_time" validate:"required"`
	Recurrence  models.RecurrenceType `json:"recurrence"`
	Location    *string               `json:"location"`
}

// UpdateScheduleRequest rewrites an existing schedule entry.
type UpdateScheduleRequest struct {
	CourseID    string                `json:"course_id" validate:"required"`
	Title       string                `json:"title" validate:"required"`
	Description *string               `json:"description"`
	StartTime   time.Time             `json:"start_time" validate:"required"`
	EndTime     time.Time             `json:"end_time" validate:"required"`
	Recurrence  models.RecurrenceType `json:"recurrence"`
	Location    *string               `json:"location"`
}

// ScheduleService guards a teacher's calendar: entries are half-open
// intervals and no two entries for the same teacher may overlap. Weekly
// recurrence is stored as-is and deliberately not expanded into future
// instances for conflict purposes.
type ScheduleService struct {
	repo      scheduleRepository
	teachers  teacherReader
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, teachers teacherReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, teachers: teachers, courses: courses, validator: validate, logger: logger, now: time.Now}
}

// ListByTeacher returns a teacher's calendar.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedule")
	}
	return entries, nil
}

// ListByTeacherAndRange returns the teacher's entries intersecting [from, to).
func (s *ScheduleService) ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.ScheduleEntry, error) {
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}
	entries, err := s.repo.ListByTeacherAndRange(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedule range")
	}
	return entries, nil
}

// ListByCourse returns entries booked for a course.
func (s *ScheduleService) ListByCourse(ctx context.Context, courseID string) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course schedule")
	}
	return entries, nil
}

// Conflicts returns entries overlapping [start, end) on a teacher's calendar.
func (s *ScheduleService) Conflicts(ctx context.Context, teacherID string, start, end time.Time, excludeID string) ([]models.ScheduleEntry, error) {
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}
	entries, err := s.repo.FindConflicts(ctx, teacherID, start, end, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}
	return entries, nil
}

// Create inserts a new schedule entry after conflict detection. The conflict
// check and insert run in one transaction at the repository.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}
	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}
	if !recurrence.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported recurrence type")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	entry := &models.ScheduleEntry{
		TeacherID:   req.TeacherID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Recurrence:  recurrence,
		Location:    req.Location,
	}
	if err := s.repo.CreateChecked(ctx, entry); err != nil {
		return nil, s.wrapScheduleError(err, "failed to create schedule entry")
	}
	return entry, nil
}

// Update rewrites an entry. The conflict check only re-runs when the
// interval actually changed.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval, "")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = existing.Recurrence
	}
	if !recurrence.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported recurrence type")
	}

	updated := &models.ScheduleEntry{
		ID:          existing.ID,
		TeacherID:   existing.TeacherID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Recurrence:  recurrence,
		Location:    req.Location,
		CreatedAt:   existing.CreatedAt,
	}

	intervalChanged := !req.StartTime.Equal(existing.StartTime) || !req.EndTime.Equal(existing.EndTime)
	if intervalChanged {
		err = s.repo.UpdateChecked(ctx, updated)
	} else {
		err = s.repo.Update(ctx, updated)
	}
	if err != nil {
		return nil, s.wrapScheduleError(err, "failed to update schedule entry")
	}
	return updated, nil
}

// Delete removes an entry unless its start time already passed.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	if entry.StartTime.Before(s.now()) {
		return appErrors.Clone(appErrors.ErrPastEventDeletion, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	return nil
}

func (s *ScheduleService) wrapScheduleError(err error, message string) error {
	var conflict *models.ScheduleConflictError
	if errors.As(err, &conflict) {
		return appErrors.Wrap(conflict, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, conflict.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
