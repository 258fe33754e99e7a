package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type gradedEnrollmentReader interface {
	ListCompletedWithGrades(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
}

type attendanceCounter interface {
	CountByStatus(ctx context.Context, studentID, courseID string) (map[models.AttendanceStatus]int, error)
}

type marksReader interface {
	ListByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]models.MarksRecord, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.MarksRecord, error)
}

// AnalyticsService computes GPA, attendance and marks aggregates. All
// aggregations are single-pass reductions over already-fetched collections;
// empty inputs yield zero values, never errors.
type AnalyticsService struct {
	enrollments gradedEnrollmentReader
	attendance  attendanceCounter
	marks       marksReader
	logger      *zap.Logger
}

// NewAnalyticsService constructs AnalyticsService.
func NewAnalyticsService(enrollments gradedEnrollmentReader, attendance attendanceCounter, marks marksReader, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{enrollments: enrollments, attendance: attendance, marks: marks, logger: logger}
}

// ComputeGPA reduces completed, graded enrollments into a credit-weighted
// grade point average. Enrollments without grade points and non-completed
// enrollments are skipped; an empty input yields 0.0.
func ComputeGPA(enrollments []models.EnrollmentDetail) float64 {
	totalPoints := 0.0
	totalCredits := 0
	for _, e := range enrollments {
		if e.Status != models.EnrollmentStatusCompleted || e.GradePoints == nil {
			continue
		}
		totalPoints += *e.GradePoints * float64(e.Credits)
		totalCredits += e.Credits
	}
	if totalCredits == 0 {
		return 0.0
	}
	return totalPoints / float64(totalCredits)
}

// TotalActiveCredits sums the credits of ACTIVE enrollments.
func TotalActiveCredits(enrollments []models.EnrollmentDetail) int {
	total := 0
	for _, e := range enrollments {
		if e.Status == models.EnrollmentStatusActive {
			total += e.Credits
		}
	}
	return total
}

// AttendancePercentage returns present/total as 0-100, with 0.0 when no
// sessions were recorded.
func AttendancePercentage(present, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(present) / float64(total) * 100
}

// AverageMarksByExamType groups records by exam type and averages their
// percentage scores. Exam types without records are absent from the result,
// which is sorted by exam type.
func AverageMarksByExamType(records []models.MarksRecord) []models.ExamTypeAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, record := range records {
		sums[record.ExamType] += record.Percentage()
		counts[record.ExamType]++
	}

	averages := make([]models.ExamTypeAverage, 0, len(sums))
	for examType, sum := range sums {
		averages = append(averages, models.ExamTypeAverage{
			ExamType: examType,
			Average:  sum / float64(counts[examType]),
			Count:    counts[examType],
		})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].ExamType < averages[j].ExamType })
	return averages
}

// StudentGPA loads a student's graded enrollments and reduces them to a GPA.
func (s *AnalyticsService) StudentGPA(ctx context.Context, studentID string) (float64, error) {
	enrollments, err := s.enrollments.ListCompletedWithGrades(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load graded enrollments")
	}
	return ComputeGPA(enrollments), nil
}

// StudentActiveCredits sums the credit load of a student's active enrollments.
func (s *AnalyticsService) StudentActiveCredits(ctx context.Context, studentID string) (int, error) {
	enrollments, err := s.enrollments.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active enrollments")
	}
	return TotalActiveCredits(enrollments), nil
}

// StudentAttendance aggregates a student's attendance in one course.
func (s *AnalyticsService) StudentAttendance(ctx context.Context, studentID, courseID string) (*models.AttendanceSummary, error) {
	counts, err := s.attendance.CountByStatus(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	summary := &models.AttendanceSummary{
		Present: counts[models.AttendanceStatusPresent],
		Absent:  counts[models.AttendanceStatusAbsent],
		Late:    counts[models.AttendanceStatusLate],
		Excused: counts[models.AttendanceStatusExcused],
	}
	summary.Total = summary.Present + summary.Absent + summary.Late + summary.Excused
	// Only PRESENT counts toward the percentage; LATE and EXCUSED do not.
	summary.Percent = AttendancePercentage(summary.Present, summary.Total)
	return summary, nil
}

// CourseExamAverages averages a course's marks per exam type.
func (s *AnalyticsService) CourseExamAverages(ctx context.Context, courseID string) ([]models.ExamTypeAverage, error) {
	records, err := s.marks.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course marks")
	}
	return AverageMarksByExamType(records), nil
}

// StudentExamAverages averages a student's marks per exam type in a course.
func (s *AnalyticsService) StudentExamAverages(ctx context.Context, studentID, courseID string) ([]models.ExamTypeAverage, error) {
	records, err := s.marks.ListByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student marks")
	}
	return AverageMarksByExamType(records), nil
}
