package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eadms/academic-api/internal/service"
	"github.com/eadms/academic-api/pkg/response"
)

// DashboardHandler exposes role-specific dashboard endpoints.
type DashboardHandler struct {
	dashboards *service.DashboardService
	analytics  *service.AnalyticsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboards *service.DashboardService, analytics *service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, analytics: analytics}
}

// Admin godoc
// @Summary Admin dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboards/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	dashboard, err := h.dashboards.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Student godoc
// @Summary Student dashboard
// @Tags Dashboards
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /dashboards/students/{id} [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	dashboard, err := h.dashboards.Student(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Teacher godoc
// @Summary Teacher dashboard
// @Tags Dashboards
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /dashboards/teachers/{id} [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	dashboard, err := h.dashboards.Teacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// StudentGPA godoc
// @Summary Credit-weighted GPA for a student
// @Tags Dashboards
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/gpa [get]
func (h *DashboardHandler) StudentGPA(c *gin.Context) {
	gpa, err := h.analytics.StudentGPA(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student_id": c.Param("id"), "gpa": gpa}, nil)
}
