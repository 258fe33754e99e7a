package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type entityCounter interface {
	Count(ctx context.Context) (int, error)
}

type teacherCourseLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
}

type teacherCalendarLister interface {
	ListByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]models.ScheduleEntry, error)
}

// DashboardConfig tunes dashboard composition.
type DashboardConfig struct {
	CacheTTL             time.Duration
	LowAttendanceWarnPct float64
	DeansListMinimumGPA  float64
	ProbationMaximumGPA  float64
}

// DashboardService composes role-specific summary payloads. Results are
// cached; mutations elsewhere invalidate by key prefix.
type DashboardService struct {
	students  entityCounter
	teachers  entityCounter
	courses   entityCounter
	courseSrc teacherCourseLister
	calendar  teacherCalendarLister
	analytics *AnalyticsService
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students  entityCounter
	Teachers  entityCounter
	Courses   entityCounter
	CourseSrc teacherCourseLister
	Calendar  teacherCalendarLister
	Analytics *AnalyticsService
	Cache     *CacheService
	Logger    *zap.Logger
	Config    DashboardConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.LowAttendanceWarnPct <= 0 {
		cfg.LowAttendanceWarnPct = 75
	}
	if cfg.DeansListMinimumGPA <= 0 {
		cfg.DeansListMinimumGPA = 3.7
	}
	if cfg.ProbationMaximumGPA <= 0 {
		cfg.ProbationMaximumGPA = 2.0
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:  params.Students,
		teachers:  params.Teachers,
		courses:   params.Courses,
		courseSrc: params.CourseSrc,
		calendar:  params.Calendar,
		analytics: params.Analytics,
		cache:     params.Cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Admin returns institution-wide counts.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	const key = "dashboard:admin"
	var cached models.AdminDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	dashboard := &models.AdminDashboard{GeneratedAt: s.now().UTC()}
	var err error
	if dashboard.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if dashboard.TotalTeachers, err = s.teachers.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	if dashboard.TotalCourses, err = s.courses.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count courses")
	}

	if err := s.cache.Set(ctx, key, dashboard, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache admin dashboard", zap.Error(err))
	}
	return dashboard, nil
}

// Student returns a student's academic standing: GPA, credit load and
// per-course attendance, flagged against the configured thresholds.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	key := fmt.Sprintf("dashboard:student:%s", studentID)
	var cached models.StudentDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	gpa, err := s.analytics.StudentGPA(ctx, studentID)
	if err != nil {
		return nil, err
	}
	credits, err := s.analytics.StudentActiveCredits(ctx, studentID)
	if err != nil {
		return nil, err
	}
	active, err := s.analytics.enrollments.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active enrollments")
	}

	standings := make([]models.CourseStanding, 0, len(active))
	for _, enrollment := range active {
		summary, err := s.analytics.StudentAttendance(ctx, studentID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		standings = append(standings, models.CourseStanding{
			CourseID:      enrollment.CourseID,
			CourseCode:    enrollment.CourseCode,
			CourseName:    enrollment.CourseName,
			AttendancePct: summary.Percent,
			LowAttendance: summary.Total > 0 && summary.Percent < s.cfg.LowAttendanceWarnPct,
		})
	}

	dashboard := &models.StudentDashboard{
		StudentID:     studentID,
		GPA:           gpa,
		ActiveCredits: credits,
		DeansList:     gpa >= s.cfg.DeansListMinimumGPA,
		OnProbation:   gpa > 0 && gpa < s.cfg.ProbationMaximumGPA,
		Courses:       standings,
		GeneratedAt:   s.now().UTC(),
	}

	if err := s.cache.Set(ctx, key, dashboard, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache student dashboard", zap.String("student_id", studentID), zap.Error(err))
	}
	return dashboard, nil
}

// Teacher returns a teacher's course load and the coming week's calendar.
func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*models.TeacherDashboard, error) {
	key := fmt.Sprintf("dashboard:teacher:%s", teacherID)
	var cached models.TeacherDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	courses, err := s.courseSrc.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher courses")
	}
	now := s.now().UTC()
	week, err := s.calendar.ListByTeacherAndRange(ctx, teacherID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher calendar")
	}

	dashboard := &models.TeacherDashboard{
		TeacherID:    teacherID,
		Courses:      courses,
		UpcomingWeek: week,
		GeneratedAt:  now,
	}

	if err := s.cache.Set(ctx, key, dashboard, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache teacher dashboard", zap.String("teacher_id", teacherID), zap.Error(err))
	}
	return dashboard, nil
}

// InvalidateStudent drops cached dashboards affected by a student mutation.
func (s *DashboardService) InvalidateStudent(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:student:%s", studentID)); err != nil {
		s.logger.Warn("failed to invalidate student dashboard", zap.String("student_id", studentID), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, "dashboard:admin"); err != nil {
		s.logger.Warn("failed to invalidate admin dashboard", zap.Error(err))
	}
}
