package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. ACTIVE is the only initial state; all other
// statuses are terminal.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusFailed    EnrollmentStatus = "FAILED"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped,
		EnrollmentStatusWithdrawn, EnrollmentStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true when no further transition is allowed out of s.
func (s EnrollmentStatus) Terminal() bool {
	return s.Valid() && s != EnrollmentStatusActive
}

// RecordsCompletionDate reports whether transitioning into s stamps a
// completion date. FAILED is terminal but records none.
func (s EnrollmentStatus) RecordsCompletionDate() bool {
	switch s {
	case EnrollmentStatusCompleted, EnrollmentStatusDropped, EnrollmentStatusWithdrawn:
		return true
	default:
		return false
	}
}

// Enrollment captures a student's registration to a course for a semester of
// an academic year. Letter grade and grade points stay unset until a final
// grade is recorded.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	Semester       int              `db:"semester" json:"semester"`
	AcademicYear   int              `db:"academic_year" json:"academic_year"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	CompletionDate *time.Time       `db:"completion_date" json:"completion_date,omitempty"`
	FinalGrade     *float64         `db:"final_grade" json:"final_grade,omitempty"`
	LetterGrade    *string          `db:"letter_grade" json:"letter_grade,omitempty"`
	GradePoints    *float64         `db:"grade_points" json:"grade_points,omitempty"`
	Remarks        *string          `db:"remarks" json:"remarks,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	Credits     int    `db:"credits" json:"credits"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID    string
	CourseID     string
	Semester     int
	AcademicYear int
	Status       EnrollmentStatus
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
