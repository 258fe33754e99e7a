package models

import "time"

// MarksRecord stores the score a student obtained in one exam of a course.
// MarksObtained never exceeds MaxMarks and MaxMarks is strictly positive.
type MarksRecord struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	ExamType      string    `db:"exam_type" json:"exam_type"`
	ExamDate      time.Time `db:"exam_date" json:"exam_date"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      float64   `db:"max_marks" json:"max_marks"`
	Remarks       *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Percentage returns the obtained share of the maximum as 0-100.
func (m MarksRecord) Percentage() float64 {
	if m.MaxMarks <= 0 {
		return 0
	}
	return m.MarksObtained / m.MaxMarks * 100
}

// MarksFilter scopes listing queries.
type MarksFilter struct {
	StudentID string
	CourseID  string
	ExamType  string
	Page      int
	PageSize  int
}

// ExamTypeAverage is the mean percentage across records of one exam type.
type ExamTypeAverage struct {
	ExamType string  `json:"exam_type"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}
