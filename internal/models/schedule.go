package models

import (
	"fmt"
	"time"
)

// RecurrenceType describes how a schedule entry repeats.
type RecurrenceType string

const (
	RecurrenceNone   RecurrenceType = "NONE"
	RecurrenceWeekly RecurrenceType = "WEEKLY"
)

// Valid returns true when the recurrence is a supported value.
func (r RecurrenceType) Valid() bool {
	return r == RecurrenceNone || r == RecurrenceWeekly
}

// ScheduleEntry represents a booked slot on a teacher's calendar. The
// interval is half-open: [StartTime, EndTime). Weekly recurrence is an
// interpretation hint for consumers; conflict detection only considers the
// stored interval.
type ScheduleEntry struct {
	ID          string         `db:"id" json:"id"`
	TeacherID   string         `db:"teacher_id" json:"teacher_id"`
	CourseID    string         `db:"course_id" json:"course_id"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description,omitempty"`
	StartTime   time.Time      `db:"start_time" json:"start_time"`
	EndTime     time.Time      `db:"end_time" json:"end_time"`
	Recurrence  RecurrenceType `db:"recurrence" json:"recurrence"`
	Location    *string        `db:"location" json:"location,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the entry's half-open interval intersects
// [start, end). Back-to-back entries sharing a boundary do not overlap.
func (s ScheduleEntry) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}

// ScheduleFilter describes query params for listing schedule entries.
type ScheduleFilter struct {
	TeacherID string
	CourseID  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// ScheduleConflictError is returned when a new or updated entry collides
// with an existing one on the same teacher's calendar.
type ScheduleConflictError struct {
	Existing ScheduleEntry
}

// Error implements the error interface naming the conflicting entry.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("schedule conflicts with existing class %q from %s to %s",
		e.Existing.Title,
		e.Existing.StartTime.Format(time.RFC3339),
		e.Existing.EndTime.Format(time.RFC3339))
}
