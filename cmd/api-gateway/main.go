package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eadms/academic-api/api/swagger"
	"github.com/eadms/academic-api/internal/handler"
	"github.com/eadms/academic-api/internal/middleware"
	"github.com/eadms/academic-api/internal/repository"
	"github.com/eadms/academic-api/internal/service"
	"github.com/eadms/academic-api/pkg/cache"
	"github.com/eadms/academic-api/pkg/config"
	"github.com/eadms/academic-api/pkg/database"
	"github.com/eadms/academic-api/pkg/logger"
	corsmiddleware "github.com/eadms/academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eadms/academic-api/pkg/middleware/requestid"
)

// @title EADMS Academic API
// @version 1.0.0
// @description Enrollment lifecycle, grading and scheduling backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	marksRepo := repository.NewMarksRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "eadms-academic-api",
	})
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	analyticsSvc := service.NewAnalyticsService(enrollmentRepo, attendanceRepo, marksRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, validate, logr)
	marksSvc := service.NewMarksService(marksRepo, enrollmentRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, courseRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, marksRepo, attendanceRepo, enrollmentRepo, userRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, scheduleRepo, userRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, validate, logr)
	reportSvc := service.NewReportService(studentRepo, enrollmentRepo, marksRepo, attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:  studentRepo,
		Teachers:  teacherRepo,
		Courses:   courseRepo,
		CourseSrc: courseRepo,
		Calendar:  scheduleRepo,
		Analytics: analyticsSvc,
		Cache:     cacheSvc,
		Logger:    logr,
		Config: service.DashboardConfig{
			CacheTTL:             cfg.Dashboard.CacheTTL,
			LowAttendanceWarnPct: cfg.Grading.LowAttendanceWarnPct,
			DeansListMinimumGPA:  cfg.Grading.DeansListMinimumGPA,
			ProbationMaximumGPA:  cfg.Grading.ProbationMaximumGPA,
		},
	})

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, courseSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, analyticsSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, metricsSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, analyticsSvc)
	marksHandler := handler.NewMarksHandler(marksSvc, analyticsSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, metricsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, analyticsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/register", middleware.RBAC("ADMIN"), authHandler.Register)

	students := authed.Group("/students")
	{
		students.GET("", middleware.RBAC("ADMIN", "TEACHER"), studentHandler.List)
		students.POST("", middleware.RBAC("ADMIN"), studentHandler.Create)
		students.GET("/:id", middleware.RBAC("ADMIN", "TEACHER", "SELF"), studentHandler.Get)
		students.PUT("/:id", middleware.RBAC("ADMIN"), studentHandler.Update)
		students.DELETE("/:id", middleware.RBAC("ADMIN"), studentHandler.Delete)
		students.GET("/:id/enrollments", middleware.RBAC("ADMIN", "TEACHER", "SELF"), enrollmentHandler.ListByStudent)
		students.GET("/:id/gpa", middleware.RBAC("ADMIN", "TEACHER", "SELF"), dashboardHandler.StudentGPA)
		students.GET("/:id/attendance", middleware.RBAC("ADMIN", "TEACHER", "SELF"), attendanceHandler.Summary)
		students.GET("/:id/exam-averages", middleware.RBAC("ADMIN", "TEACHER", "SELF"), marksHandler.StudentExamAverages)
		students.GET("/:id/transcript", middleware.RBAC("ADMIN", "TEACHER", "SELF"), reportHandler.Transcript)
		students.GET("/:id/transcript/export", middleware.RBAC("ADMIN", "TEACHER", "SELF"), reportHandler.Export)
	}

	teachers := authed.Group("/teachers")
	{
		teachers.GET("", middleware.RBAC("ADMIN"), teacherHandler.List)
		teachers.POST("", middleware.RBAC("ADMIN"), teacherHandler.Create)
		teachers.GET("/:id", middleware.RBAC("ADMIN", "SELF"), teacherHandler.Get)
		teachers.PUT("/:id", middleware.RBAC("ADMIN"), teacherHandler.Update)
		teachers.DELETE("/:id", middleware.RBAC("ADMIN"), teacherHandler.Delete)
		teachers.GET("/:id/courses", middleware.RBAC("ADMIN", "SELF"), teacherHandler.ListCourses)
		teachers.GET("/:id/schedule", middleware.RBAC("ADMIN", "SELF"), scheduleHandler.ListByTeacher)
		teachers.GET("/:id/schedule/conflicts", middleware.RBAC("ADMIN", "SELF"), scheduleHandler.Conflicts)
	}

	courses := authed.Group("/courses")
	{
		courses.GET("", courseHandler.List)
		courses.POST("", middleware.RBAC("ADMIN"), courseHandler.Create)
		courses.GET("/:id", courseHandler.Get)
		courses.PUT("/:id", middleware.RBAC("ADMIN"), courseHandler.Update)
		courses.DELETE("/:id", middleware.RBAC("ADMIN"), courseHandler.Delete)
		courses.GET("/:id/enrollments", middleware.RBAC("ADMIN", "TEACHER"), enrollmentHandler.ListByCourse)
		courses.GET("/:id/exam-averages", middleware.RBAC("ADMIN", "TEACHER"), courseHandler.ExamAverages)
		courses.GET("/:id/marks/export", middleware.RBAC("ADMIN", "TEACHER"), reportHandler.ExportCourseMarks)
		courses.GET("/:id/attendance/export", middleware.RBAC("ADMIN", "TEACHER"), reportHandler.ExportCourseAttendance)
	}

	enrollments := authed.Group("/enrollments")
	enrollments.Use(middleware.RBAC("ADMIN", "TEACHER"))
	{
		enrollments.GET("", enrollmentHandler.List)
		enrollments.POST("", enrollmentHandler.Create)
		enrollments.PUT("/:id/status", enrollmentHandler.UpdateStatus)
		enrollments.PUT("/:id/complete", enrollmentHandler.Complete)
		enrollments.PUT("/:id/drop", enrollmentHandler.Drop)
	}

	attendance := authed.Group("/attendance")
	attendance.Use(middleware.RBAC("ADMIN", "TEACHER"))
	{
		attendance.GET("", attendanceHandler.List)
		attendance.POST("", attendanceHandler.Record)
		attendance.POST("/bulk", attendanceHandler.RecordBulk)
	}

	marks := authed.Group("/marks")
	marks.Use(middleware.RBAC("ADMIN", "TEACHER"))
	{
		marks.GET("", marksHandler.List)
		marks.POST("", marksHandler.Record)
	}

	schedules := authed.Group("/schedules")
	schedules.Use(middleware.RBAC("ADMIN", "TEACHER"))
	{
		schedules.POST("", scheduleHandler.Create)
		schedules.PUT("/:id", scheduleHandler.Update)
		schedules.DELETE("/:id", scheduleHandler.Delete)
	}

	dashboards := authed.Group("/dashboards")
	{
		dashboards.GET("/admin", middleware.RBAC("ADMIN"), dashboardHandler.Admin)
		dashboards.GET("/students/:id", middleware.RBAC("ADMIN", "TEACHER", "SELF"), dashboardHandler.Student)
		dashboards.GET("/teachers/:id", middleware.RBAC("ADMIN", "SELF"), dashboardHandler.Teacher)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
