package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	deleted  *[]string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	*m.deleted = append(*m.deleted, "student")
	return nil
}

type recordingRemover struct {
	name  string
	calls *[]string
}

func (r *recordingRemover) DeleteByStudent(ctx context.Context, studentID string) error {
	*r.calls = append(*r.calls, r.name)
	return nil
}

type recordingUserRemover struct {
	calls *[]string
}

func (r *recordingUserRemover) DeleteByProfile(ctx context.Context, profileID string) error {
	*r.calls = append(*r.calls, "user")
	return nil
}

func TestStudentServiceDeleteCascadeOrder(t *testing.T) {
	var calls []string
	repo := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1", Active: true}}, deleted: &calls}
	svc := NewStudentService(
		repo,
		&recordingRemover{name: "marks", calls: &calls},
		&recordingRemover{name: "attendance", calls: &calls},
		&recordingRemover{name: "enrollments", calls: &calls},
		&recordingUserRemover{calls: &calls},
		validator.New(),
		zap.NewNop(),
	)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Equal(t, []string{"marks", "attendance", "enrollments", "student", "user"}, calls)
	assert.NotContains(t, repo.students, "s1")
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	var calls []string
	repo := &mockStudentRepo{deleted: &calls}
	svc := NewStudentService(
		repo,
		&recordingRemover{name: "marks", calls: &calls},
		&recordingRemover{name: "attendance", calls: &calls},
		&recordingRemover{name: "enrollments", calls: &calls},
		&recordingUserRemover{calls: &calls},
		validator.New(),
		zap.NewNop(),
	)

	err := svc.Delete(context.Background(), "ghost")
	assertErrorCode(t, err, appErrors.ErrNotFound.Code)
	assert.Empty(t, calls)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	var calls []string
	repo := &mockStudentRepo{deleted: &calls}
	svc := NewStudentService(repo, &recordingRemover{calls: &calls}, &recordingRemover{calls: &calls}, &recordingRemover{calls: &calls}, &recordingUserRemover{calls: &calls}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "No Email", RollNumber: "R1"})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)

	student, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "Ada Lovelace", Email: "ada@example.com", RollNumber: "R1"})
	require.NoError(t, err)
	assert.True(t, student.Active)
}
