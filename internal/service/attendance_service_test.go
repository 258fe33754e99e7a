package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records []models.AttendanceRecord
}

func (m *mockAttendanceRepo) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return m.records, len(m.records), nil
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, record *models.AttendanceRecord) error {
	for i, existing := range m.records {
		if existing.StudentID == record.StudentID && existing.CourseID == record.CourseID && existing.Date.Equal(record.Date) {
			m.records[i] = *record
			return nil
		}
	}
	m.records = append(m.records, *record)
	return nil
}

func newAttendanceFixture(t *testing.T) (*AttendanceService, *mockAttendanceRepo) {
	t.Helper()
	repo := &mockAttendanceRepo{}
	enrollments := &stubEnrollmentReader{active: []models.EnrollmentDetail{
		{Enrollment: models.Enrollment{StudentID: "stu-1", CourseID: "crs-1", Status: models.EnrollmentStatusActive}},
	}}
	return NewAttendanceService(repo, enrollments, nil, nil), repo
}

func TestAttendanceServiceRecord(t *testing.T) {
	svc, repo := newAttendanceFixture(t)

	session := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
	record, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		CourseID:  "crs-1",
		Date:      session,
		Status:    models.AttendanceStatusLate,
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), record.Date)
	require.Len(t, repo.records, 1)

	// same day again overwrites instead of duplicating
	_, err = svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		CourseID:  "crs-1",
		Date:      session.Add(2 * time.Hour),
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	require.Len(t, repo.records, 1)
	require.Equal(t, models.AttendanceStatusPresent, repo.records[0].Status)
}

func TestAttendanceServiceRecordKeepsWallClockDay(t *testing.T) {
	svc, repo := newAttendanceFixture(t)

	// 01:00 at +05:30 is still the previous day in absolute time
	offset := time.FixedZone("IST", 5*3600+1800)
	record, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		CourseID:  "crs-1",
		Date:      time.Date(2025, 4, 10, 1, 0, 0, 0, offset),
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), record.Date)
	require.Len(t, repo.records, 1)
}

func TestAttendanceServiceRecordRequiresActiveEnrollment(t *testing.T) {
	svc, _ := newAttendanceFixture(t)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		CourseID:  "crs-other",
		Date:      time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatusPresent,
	})
	assertErrorCode(t, err, appErrors.ErrPreconditionFailed.Code)
}

func TestAttendanceServiceRecordRejectsUnknownStatus(t *testing.T) {
	svc, _ := newAttendanceFixture(t)

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		StudentID: "stu-1",
		CourseID:  "crs-1",
		Date:      time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatus("SLEEPING"),
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}

func TestAttendanceServiceRecordBulk(t *testing.T) {
	svc, repo := newAttendanceFixture(t)

	records, err := svc.RecordBulk(context.Background(), BulkRecordAttendanceRequest{
		CourseID: "crs-1",
		Date:     time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Entries: []BulkAttendanceEntry{
			{StudentID: "stu-1", Status: models.AttendanceStatusPresent},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, repo.records, 1)

	_, err = svc.RecordBulk(context.Background(), BulkRecordAttendanceRequest{
		CourseID: "crs-1",
		Date:     time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Entries:  nil,
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}
