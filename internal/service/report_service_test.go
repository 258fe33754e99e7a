package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

func newReportFixture(t *testing.T) *ReportService {
	t.Helper()
	gradeA, letterA, pointsA := 91.0, "A+", 4.0
	gradeB, letterB, pointsB := 74.5, "B", 3.0
	enrollments := &stubEnrollmentReader{
		completed: []models.EnrollmentDetail{
			{
				Enrollment: models.Enrollment{
					CourseID:     "crs-1",
					Semester:     1,
					AcademicYear: 2025,
					Status:       models.EnrollmentStatusCompleted,
					FinalGrade:   &gradeA,
					LetterGrade:  &letterA,
					GradePoints:  &pointsA,
				},
				CourseCode: "MATH101",
				CourseName: "Algebra",
				Credits:    4,
			},
			{
				Enrollment: models.Enrollment{
					CourseID:     "crs-2",
					Semester:     2,
					AcademicYear: 2025,
					Status:       models.EnrollmentStatusCompleted,
					FinalGrade:   &gradeB,
					LetterGrade:  &letterB,
					GradePoints:  &pointsB,
				},
				CourseCode: "PHY102",
				CourseName: "Mechanics",
				Credits:    3,
			},
		},
	}
	students := &mockStudentReader{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", FullName: "Asha Verma", RollNumber: "R-042", Active: true},
	}}
	marks := &stubMarksReader{records: []models.MarksRecord{
		{StudentID: "stu-1", CourseID: "crs-1", ExamType: "MIDTERM",
			ExamDate: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), MarksObtained: 42, MaxMarks: 50},
	}}
	attendance := &stubAttendanceLister{records: []models.AttendanceRecord{
		{StudentID: "stu-1", CourseID: "crs-1",
			Date: time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), Status: models.AttendanceStatusPresent},
	}}
	svc := NewReportService(students, enrollments, marks, attendance, nil)
	svc.now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

type stubAttendanceLister struct {
	records []models.AttendanceRecord
}

func (s *stubAttendanceLister) ListByCourse(_ context.Context, _ string) ([]models.AttendanceRecord, error) {
	return s.records, nil
}

func TestReportServiceTranscript(t *testing.T) {
	svc := newReportFixture(t)

	transcript, err := svc.Transcript(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, "R-042", transcript.Student.RollNumber)
	require.Len(t, transcript.Entries, 2)
	require.Equal(t, 7, transcript.TotalCredits)
	// (4*4.0 + 3*3.0) / 7
	require.InDelta(t, 3.5714, transcript.GPA, 0.0001)
	require.Equal(t, "A+", transcript.Entries[0].LetterGrade)
}

func TestReportServiceTranscriptUnknownStudent(t *testing.T) {
	svc := newReportFixture(t)

	_, err := svc.Transcript(context.Background(), "stu-404")
	assertErrorCode(t, err, appErrors.ErrNotFound.Code)
}

func TestReportServiceExportTranscriptCSV(t *testing.T) {
	svc := newReportFixture(t)

	result, err := svc.ExportTranscript(context.Background(), "stu-1", ReportFormatCSV)
	require.NoError(t, err)
	require.Equal(t, "transcript_R-042_20250701.csv", result.Filename)
	require.Equal(t, "text/csv", result.ContentType)

	body := string(result.Data)
	require.True(t, strings.HasPrefix(body, "Course,Title,Credits,Term,Grade,Letter,Points"))
	require.Contains(t, body, "MATH101,Algebra,4,S1 2025,91,A+,4.0")
	require.Contains(t, body, "PHY102,Mechanics,3,S2 2025,74.5,B,3.0")
	require.Contains(t, body, "Cumulative GPA: 3.57")
	require.Contains(t, body, "Total Credits: 7")
}

func TestReportServiceExportTranscriptPDF(t *testing.T) {
	svc := newReportFixture(t)

	result, err := svc.ExportTranscript(context.Background(), "stu-1", ReportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "transcript_R-042_20250701.pdf", result.Filename)
	require.Equal(t, "application/pdf", result.ContentType)
	require.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestReportServiceExportCourseMarks(t *testing.T) {
	svc := newReportFixture(t)

	result, err := svc.ExportCourseMarks(context.Background(), "crs-1")
	require.NoError(t, err)
	require.Equal(t, "marks_crs-1_20250701.csv", result.Filename)
	require.Contains(t, string(result.Data), "stu-1,MIDTERM,2025-04-10,42,50,84.0")
}

func TestReportServiceExportCourseAttendance(t *testing.T) {
	svc := newReportFixture(t)

	result, err := svc.ExportCourseAttendance(context.Background(), "crs-1")
	require.NoError(t, err)
	require.Equal(t, "attendance_crs-1_20250701.csv", result.Filename)
	require.Contains(t, string(result.Data), "stu-1,2025-04-11,PRESENT")
}

func TestReportServiceExportTranscriptUnsupportedFormat(t *testing.T) {
	svc := newReportFixture(t)

	_, err := svc.ExportTranscript(context.Background(), "stu-1", ReportFormat("xml"))
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}
