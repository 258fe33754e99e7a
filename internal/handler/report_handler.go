package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eadms/academic-api/internal/service"
	"github.com/eadms/academic-api/pkg/response"
)

// ReportHandler exposes transcript and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Transcript godoc
// @Summary Academic transcript for a student
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/transcript [get]
func (h *ReportHandler) Transcript(c *gin.Context) {
	transcript, err := h.reports.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, transcript, nil)
}

// Export godoc
// @Summary Export a student's transcript as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /students/{id}/transcript/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := service.ReportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.reports.ExportTranscript(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ExportCourseMarks godoc
// @Summary Export a course's exam records as CSV
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Success 200 {file} binary
// @Router /courses/{id}/marks/export [get]
func (h *ReportHandler) ExportCourseMarks(c *gin.Context) {
	result, err := h.reports.ExportCourseMarks(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ExportCourseAttendance godoc
// @Summary Export a course's attendance log as CSV
// @Tags Reports
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Success 200 {file} binary
// @Router /courses/{id}/attendance/export [get]
func (h *ReportHandler) ExportCourseAttendance(c *gin.Context) {
	result, err := h.reports.ExportCourseAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
