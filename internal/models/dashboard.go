package models

import "time"

// AdminDashboard summarizes the institution for administrators.
type AdminDashboard struct {
	TotalStudents int       `json:"total_students"`
	TotalTeachers int       `json:"total_teachers"`
	TotalCourses  int       `json:"total_courses"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// CourseStanding summarizes a student's position in one course.
type CourseStanding struct {
	CourseID      string  `json:"course_id"`
	CourseCode    string  `json:"course_code"`
	CourseName    string  `json:"course_name"`
	AttendancePct float64 `json:"attendance_pct"`
	LowAttendance bool    `json:"low_attendance"`
}

// StudentDashboard summarizes academic standing for one student.
type StudentDashboard struct {
	StudentID     string           `json:"student_id"`
	GPA           float64          `json:"gpa"`
	ActiveCredits int              `json:"active_credits"`
	DeansList     bool             `json:"deans_list"`
	OnProbation   bool             `json:"on_probation"`
	Courses       []CourseStanding `json:"courses"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// TeacherDashboard summarizes a teacher's load and upcoming calendar.
type TeacherDashboard struct {
	TeacherID    string          `json:"teacher_id"`
	Courses      []Course        `json:"courses"`
	UpcomingWeek []ScheduleEntry `json:"upcoming_week"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
