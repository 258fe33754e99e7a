package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eadms/academic-api/internal/models"
	"github.com/eadms/academic-api/internal/service"
	appErrors "github.com/eadms/academic-api/pkg/errors"
	"github.com/eadms/academic-api/pkg/response"
)

// MarksHandler exposes exam marks endpoints.
type MarksHandler struct {
	marks     *service.MarksService
	analytics *service.AnalyticsService
}

// NewMarksHandler constructs MarksHandler.
func NewMarksHandler(marks *service.MarksService, analytics *service.AnalyticsService) *MarksHandler {
	return &MarksHandler{marks: marks, analytics: analytics}
}

// List godoc
// @Summary List marks records
// @Tags Marks
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Param examType query string false "Filter by exam type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /marks [get]
func (h *MarksHandler) List(c *gin.Context) {
	var filter models.MarksFilter
	filter.StudentID = c.Query("studentId")
	filter.CourseID = c.Query("courseId")
	filter.ExamType = c.Query("examType")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	records, total, err := h.marks.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Record godoc
// @Summary Record exam marks
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.RecordMarksRequest true "Marks payload"
// @Success 201 {object} response.Envelope
// @Router /marks [post]
func (h *MarksHandler) Record(c *gin.Context) {
	var req service.RecordMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.marks.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// StudentExamAverages godoc
// @Summary Average marks per exam type for a student in a course
// @Tags Marks
// @Produce json
// @Param id path string true "Student ID"
// @Param courseId query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/exam-averages [get]
func (h *MarksHandler) StudentExamAverages(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseId is required"))
		return
	}
	averages, err := h.analytics.StudentExamAverages(c.Request.Context(), c.Param("id"), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, averages, nil)
}
