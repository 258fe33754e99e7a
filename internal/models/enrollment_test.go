package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatusLifecycle(t *testing.T) {
	assert.False(t, EnrollmentStatusActive.Terminal())
	for _, status := range []EnrollmentStatus{EnrollmentStatusCompleted, EnrollmentStatusDropped, EnrollmentStatusWithdrawn, EnrollmentStatusFailed} {
		assert.True(t, status.Terminal(), string(status))
	}

	assert.True(t, EnrollmentStatusCompleted.RecordsCompletionDate())
	assert.True(t, EnrollmentStatusDropped.RecordsCompletionDate())
	assert.True(t, EnrollmentStatusWithdrawn.RecordsCompletionDate())
	assert.False(t, EnrollmentStatusFailed.RecordsCompletionDate())
	assert.False(t, EnrollmentStatus("BOGUS").Valid())
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, status := range []AttendanceStatus{AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, AttendanceStatus("SLEEPING").Valid())
}
