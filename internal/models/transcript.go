package models

import "time"

// TranscriptEntry is one completed course on a student's transcript.
type TranscriptEntry struct {
	CourseCode     string     `json:"course_code"`
	CourseName     string     `json:"course_name"`
	Credits        int        `json:"credits"`
	Semester       int        `json:"semester"`
	AcademicYear   int        `json:"academic_year"`
	FinalGrade     float64    `json:"final_grade"`
	LetterGrade    string     `json:"letter_grade"`
	GradePoints    float64    `json:"grade_points"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// Transcript is a student's complete academic record.
type Transcript struct {
	Student      Student           `json:"student"`
	Entries      []TranscriptEntry `json:"entries"`
	GPA          float64           `json:"gpa"`
	TotalCredits int               `json:"total_credits"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
