package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	created     *models.Enrollment
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string, semester, academicYear int) (bool, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.Semester == semester && e.AcademicYear == academicYear {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, completionDate *time.Time) error {
	if e, ok := m.enrollments[id]; ok {
		e.Status = status
		e.CompletionDate = completionDate
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) UpdateGrade(ctx context.Context, id string, finalGrade float64, letter string, points float64, completionDate time.Time) error {
	if e, ok := m.enrollments[id]; ok {
		e.Status = models.EnrollmentStatusCompleted
		e.FinalGrade = &finalGrade
		e.LetterGrade = &letter
		e.GradePoints = &points
		e.CompletionDate = &completionDate
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (m *mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseReader struct{}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Course{ID: id, Credits: 3}, nil
}

func newEnrollmentFixture(t *testing.T, repo *mockEnrollmentRepo) *EnrollmentService {
	t.Helper()
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1", Active: true}}}
	return NewEnrollmentService(repo, students, &mockCourseReader{}, validator.New(), zap.NewNop())
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, code, appErr.Code)
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentFixture(t, repo)

	detail, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.EnrollmentStatusActive, detail.Status)
	assert.False(t, repo.created.EnrollmentDate.IsZero())
	assert.Nil(t, detail.CompletionDate)
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusDropped},
	}}
	svc := newEnrollmentFixture(t, repo)

	// the tuple is taken regardless of the prior enrollment's status
	_, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025})
	assertErrorCode(t, err, appErrors.ErrDuplicateEnrollment.Code)
}

func TestEnrollmentServiceReenrollDifferentTerm(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusFailed},
	}}
	svc := newEnrollmentFixture(t, repo)

	detail, err := svc.Enroll(context.Background(), EnrollRequest{StudentID: "s1", CourseID: "c1", Semester: 2, AcademicYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, detail.Status)
}

func TestEnrollmentServiceComplete(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentFixture(t, repo)

	detail, err := svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: 87.5})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, detail.Status)
	require.NotNil(t, detail.LetterGrade)
	assert.Equal(t, "A", *detail.LetterGrade)
	require.NotNil(t, detail.GradePoints)
	assert.Equal(t, 4.0, *detail.GradePoints)
	require.NotNil(t, detail.CompletionDate)
}

func TestEnrollmentServiceCompleteOverwritesGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentFixture(t, repo)

	_, err := svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: 55})
	require.NoError(t, err)

	detail, err := svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: 91})
	require.NoError(t, err)
	require.NotNil(t, detail.LetterGrade)
	assert.Equal(t, "A+", *detail.LetterGrade)
	assert.Equal(t, 91.0, *detail.FinalGrade)
}

func TestEnrollmentServiceCompleteRejectsOutOfRangeGrade(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentFixture(t, repo)

	_, err := svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: 101})
	assertErrorCode(t, err, appErrors.ErrInvalidGrade.Code)

	_, err = svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: -1})
	assertErrorCode(t, err, appErrors.ErrInvalidGrade.Code)
}

func TestEnrollmentServiceCompleteRejectsDropped(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusDropped},
	}}
	svc := newEnrollmentFixture(t, repo)

	_, err := svc.Complete(context.Background(), "e1", CompleteEnrollmentRequest{FinalGrade: 80})
	assertErrorCode(t, err, appErrors.ErrPreconditionFailed.Code)
}

func TestEnrollmentServiceDrop(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentFixture(t, repo)

	detail, err := svc.Drop(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, detail.Status)
	require.NotNil(t, detail.CompletionDate)
}

func TestEnrollmentServiceFailedRecordsNoCompletionDate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentFixture(t, repo)

	detail, err := svc.UpdateStatus(context.Background(), "e1", UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusFailed, detail.Status)
	assert.Nil(t, detail.CompletionDate)
}

func TestEnrollmentServiceUpdateStatusGuards(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Semester: 1, AcademicYear: 2025, Status: models.EnrollmentStatusWithdrawn},
	}}
	svc := newEnrollmentFixture(t, repo)

	_, err := svc.UpdateStatus(context.Background(), "e1", UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusActive})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)

	_, err = svc.UpdateStatus(context.Background(), "e1", UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusDropped})
	assertErrorCode(t, err, appErrors.ErrPreconditionFailed.Code)
}
