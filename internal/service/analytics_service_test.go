package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
)

func gradedDetail(courseID string, credits int, points float64) models.EnrollmentDetail {
	return models.EnrollmentDetail{
		Enrollment: models.Enrollment{
			CourseID:    courseID,
			Status:      models.EnrollmentStatusCompleted,
			GradePoints: &points,
		},
		Credits: credits,
	}
}

func TestComputeGPAWeightsByCredits(t *testing.T) {
	enrollments := []models.EnrollmentDetail{
		gradedDetail("c1", 4, 4.0),
		gradedDetail("c2", 3, 3.0),
	}
	// (4*4.0 + 3*3.0) / 7
	assert.InDelta(t, 3.5714, ComputeGPA(enrollments), 0.0001)
}

func TestComputeGPAEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, ComputeGPA(nil))
	assert.Equal(t, 0.0, ComputeGPA([]models.EnrollmentDetail{}))
}

func TestComputeGPASkipsUngradedAndNonCompleted(t *testing.T) {
	points := 2.0
	enrollments := []models.EnrollmentDetail{
		gradedDetail("c1", 3, 4.0),
		{Enrollment: models.Enrollment{CourseID: "c2", Status: models.EnrollmentStatusActive, GradePoints: &points}, Credits: 3},
		{Enrollment: models.Enrollment{CourseID: "c3", Status: models.EnrollmentStatusCompleted}, Credits: 3},
	}
	assert.Equal(t, 4.0, ComputeGPA(enrollments))
}

func TestTotalActiveCredits(t *testing.T) {
	enrollments := []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{Status: models.EnrollmentStatusActive}, Credits: 4},
		{Enrollment: models.Enrollment{Status: models.EnrollmentStatusActive}, Credits: 3},
		{Enrollment: models.Enrollment{Status: models.EnrollmentStatusDropped}, Credits: 5},
	}
	assert.Equal(t, 7, TotalActiveCredits(enrollments))
	assert.Equal(t, 0, TotalActiveCredits(nil))
}

func TestAttendancePercentage(t *testing.T) {
	assert.Equal(t, 70.0, AttendancePercentage(7, 10))
	assert.Equal(t, 0.0, AttendancePercentage(0, 0))
	assert.Equal(t, 100.0, AttendancePercentage(5, 5))
}

func TestAverageMarksByExamType(t *testing.T) {
	records := []models.MarksRecord{
		{ExamType: "MIDTERM", MarksObtained: 40, MaxMarks: 50},
		{ExamType: "MIDTERM", MarksObtained: 45, MaxMarks: 50},
		{ExamType: "FINAL", MarksObtained: 60, MaxMarks: 100},
	}
	averages := AverageMarksByExamType(records)
	require.Len(t, averages, 2)
	// sorted by exam type
	assert.Equal(t, "FINAL", averages[0].ExamType)
	assert.Equal(t, 60.0, averages[0].Average)
	assert.Equal(t, 1, averages[0].Count)
	assert.Equal(t, "MIDTERM", averages[1].ExamType)
	assert.Equal(t, 85.0, averages[1].Average)
	assert.Equal(t, 2, averages[1].Count)
}

func TestAverageMarksByExamTypeEmpty(t *testing.T) {
	assert.Empty(t, AverageMarksByExamType(nil))
}

type stubEnrollmentReader struct {
	completed []models.EnrollmentDetail
	active    []models.EnrollmentDetail
}

func (s *stubEnrollmentReader) ListCompletedWithGrades(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return s.completed, nil
}

func (s *stubEnrollmentReader) ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return s.active, nil
}

type stubAttendanceCounter struct {
	counts map[models.AttendanceStatus]int
}

func (s *stubAttendanceCounter) CountByStatus(ctx context.Context, studentID, courseID string) (map[models.AttendanceStatus]int, error) {
	return s.counts, nil
}

type stubMarksReader struct {
	records []models.MarksRecord
}

func (s *stubMarksReader) ListByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]models.MarksRecord, error) {
	return s.records, nil
}

func (s *stubMarksReader) ListByCourse(ctx context.Context, courseID string) ([]models.MarksRecord, error) {
	return s.records, nil
}

func TestAnalyticsServiceStudentAttendance(t *testing.T) {
	counter := &stubAttendanceCounter{counts: map[models.AttendanceStatus]int{
		models.AttendanceStatusPresent: 6,
		models.AttendanceStatusLate:    1,
		models.AttendanceStatusAbsent:  2,
		models.AttendanceStatusExcused: 1,
	}}
	svc := NewAnalyticsService(&stubEnrollmentReader{}, counter, &stubMarksReader{}, zap.NewNop())

	summary, err := svc.StudentAttendance(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	// only PRESENT sessions count toward the numerator
	assert.Equal(t, 60.0, summary.Percent)
	assert.Equal(t, 6, summary.Present)
	assert.Equal(t, 1, summary.Late)
}

func TestAnalyticsServiceStudentAttendanceLateIsNotPresent(t *testing.T) {
	counter := &stubAttendanceCounter{counts: map[models.AttendanceStatus]int{
		models.AttendanceStatusPresent: 5,
		models.AttendanceStatusLate:    5,
	}}
	svc := NewAnalyticsService(&stubEnrollmentReader{}, counter, &stubMarksReader{}, zap.NewNop())

	summary, err := svc.StudentAttendance(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 50.0, summary.Percent)
}

func TestAnalyticsServiceStudentGPA(t *testing.T) {
	pointsA, pointsB := 4.0, 3.0
	completionDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	reader := &stubEnrollmentReader{completed: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{Status: models.EnrollmentStatusCompleted, GradePoints: &pointsA, CompletionDate: &completionDate}, Credits: 3},
		{Enrollment: models.Enrollment{Status: models.EnrollmentStatusCompleted, GradePoints: &pointsB, CompletionDate: &completionDate}, Credits: 3},
	}}
	svc := NewAnalyticsService(reader, &stubAttendanceCounter{}, &stubMarksReader{}, zap.NewNop())

	gpa, err := svc.StudentGPA(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3.5, gpa)
}
