package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleEntryOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	entry := ScheduleEntry{StartTime: base, EndTime: base.Add(time.Hour)}

	assert.True(t, entry.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, entry.Overlaps(base.Add(-30*time.Minute), base.Add(30*time.Minute)))
	assert.True(t, entry.Overlaps(base.Add(-time.Hour), base.Add(2*time.Hour)))
	assert.True(t, entry.Overlaps(base.Add(15*time.Minute), base.Add(45*time.Minute)))

	// back-to-back entries share a boundary but do not overlap
	assert.False(t, entry.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, entry.Overlaps(base.Add(-time.Hour), base))
	assert.False(t, entry.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)))
}
