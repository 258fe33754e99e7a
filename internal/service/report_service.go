package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
	"github.com/eadms/academic-api/pkg/export"
)

// ReportFormat selects the rendering of an exported report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type courseMarksReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.MarksRecord, error)
}

type courseAttendanceReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.AttendanceRecord, error)
}

// ExportResult carries rendered report bytes with transport metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService produces transcripts and their exported renderings.
// Generation is synchronous; reports render directly into the response.
type ReportService struct {
	students    studentReader
	enrollments gradedEnrollmentReader
	marks       courseMarksReader
	attendance  courseAttendanceReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(students studentReader, enrollments gradedEnrollmentReader, marks courseMarksReader, attendance courseAttendanceReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:    students,
		enrollments: enrollments,
		marks:       marks,
		attendance:  attendance,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		now:         time.Now,
	}
}

// Transcript assembles a student's academic record from completed, graded
// enrollments.
func (s *ReportService) Transcript(ctx context.Context, studentID string) (*models.Transcript, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	graded, err := s.enrollments.ListCompletedWithGrades(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load graded enrollments")
	}

	entries := make([]models.TranscriptEntry, 0, len(graded))
	totalCredits := 0
	for _, e := range graded {
		entry := models.TranscriptEntry{
			CourseCode:     e.CourseCode,
			CourseName:     e.CourseName,
			Credits:        e.Credits,
			Semester:       e.Semester,
			AcademicYear:   e.AcademicYear,
			CompletionDate: e.CompletionDate,
		}
		if e.FinalGrade != nil {
			entry.FinalGrade = *e.FinalGrade
		}
		if e.LetterGrade != nil {
			entry.LetterGrade = *e.LetterGrade
		}
		if e.GradePoints != nil {
			entry.GradePoints = *e.GradePoints
		}
		entries = append(entries, entry)
		totalCredits += e.Credits
	}

	return &models.Transcript{
		Student:      *student,
		Entries:      entries,
		GPA:          ComputeGPA(graded),
		TotalCredits: totalCredits,
		GeneratedAt:  s.now().UTC(),
	}, nil
}

// ExportTranscript renders a student's transcript in the requested format.
func (s *ReportService) ExportTranscript(ctx context.Context, studentID string, format ReportFormat) (*ExportResult, error) {
	transcript, err := s.Transcript(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := transcriptDataset(transcript)
	filename := fmt.Sprintf("transcript_%s_%s", transcript.Student.RollNumber, transcript.GeneratedAt.Format("20060102"))

	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv transcript")
		}
		return &ExportResult{Filename: filename + ".csv", ContentType: "text/csv", Data: data}, nil
	case ReportFormatPDF:
		subtitle := []string{
			transcript.Student.FullName,
			fmt.Sprintf("Roll Number: %s", transcript.Student.RollNumber),
		}
		data, err := s.pdf.Render(dataset, "Academic Transcript", subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf transcript")
		}
		return &ExportResult{Filename: filename + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

// ExportCourseMarks renders every exam record of a course as CSV.
func (s *ReportService) ExportCourseMarks(ctx context.Context, courseID string) (*ExportResult, error) {
	records, err := s.marks.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course marks")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"Student":  record.StudentID,
			"Exam":     record.ExamType,
			"Date":     record.ExamDate.Format("2006-01-02"),
			"Obtained": fmt.Sprintf("%g", record.MarksObtained),
			"Max":      fmt.Sprintf("%g", record.MaxMarks),
			"Percent":  fmt.Sprintf("%.1f", record.Percentage()),
		})
	}
	data, err := s.csv.Render(export.Dataset{
		Headers: []string{"Student", "Exam", "Date", "Obtained", "Max", "Percent"},
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render marks csv")
	}
	filename := fmt.Sprintf("marks_%s_%s.csv", courseID, s.now().UTC().Format("20060102"))
	return &ExportResult{Filename: filename, ContentType: "text/csv", Data: data}, nil
}

// ExportCourseAttendance renders a course's attendance log as CSV.
func (s *ReportService) ExportCourseAttendance(ctx context.Context, courseID string) (*ExportResult, error) {
	records, err := s.attendance.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course attendance")
	}

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"Student": record.StudentID,
			"Date":    record.Date.Format("2006-01-02"),
			"Status":  string(record.Status),
		})
	}
	data, err := s.csv.Render(export.Dataset{
		Headers: []string{"Student", "Date", "Status"},
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance csv")
	}
	filename := fmt.Sprintf("attendance_%s_%s.csv", courseID, s.now().UTC().Format("20060102"))
	return &ExportResult{Filename: filename, ContentType: "text/csv", Data: data}, nil
}

func transcriptDataset(transcript *models.Transcript) export.Dataset {
	headers := []string{"Course", "Title", "Credits", "Term", "Grade", "Letter", "Points"}
	rows := make([]map[string]string, 0, len(transcript.Entries))
	for _, entry := range transcript.Entries {
		rows = append(rows, map[string]string{
			"Course":  entry.CourseCode,
			"Title":   entry.CourseName,
			"Credits": fmt.Sprintf("%d", entry.Credits),
			"Term":    fmt.Sprintf("S%d %d", entry.Semester, entry.AcademicYear),
			"Grade":   strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", entry.FinalGrade), "0"), "."),
			"Letter":  entry.LetterGrade,
			"Points":  fmt.Sprintf("%.1f", entry.GradePoints),
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Summary: []string{
			fmt.Sprintf("Cumulative GPA: %.2f", transcript.GPA),
			fmt.Sprintf("Total Credits: %d", transcript.TotalCredits),
		},
	}
}
