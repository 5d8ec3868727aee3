package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// CourseTableHandler exposes weekly course table and export endpoints.
type CourseTableHandler struct {
	tables  *service.CourseTableService
	exports *service.ExportService
}

// NewCourseTableHandler constructs handler.
func NewCourseTableHandler(tables *service.CourseTableService, exports *service.ExportService) *CourseTableHandler {
	return &CourseTableHandler{tables: tables, exports: exports}
}

func parseDateParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return date, nil
}

// Get godoc
// @Summary Get a student's course table for the week containing a date
// @Tags CourseTables
// @Produce json
// @Param id path string true "Student ID"
// @Param date query string true "Any date inside the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/course-table [get]
func (h *CourseTableHandler) Get(c *gin.Context) {
	date, err := parseDateParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	table, err := h.tables.GetCourseTable(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, table, nil)
}

// ExportRequest asks for an asynchronous course table export.
type ExportRequest struct {
	Date   string              `json:"date" binding:"required"`
	Format models.ExportFormat `json:"format" binding:"required"`
}

// RequestExport godoc
// @Summary Queue a course table export
// @Tags CourseTables
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /students/{id}/course-table/exports [post]
func (h *CourseTableHandler) RequestExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "exports disabled"))
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "date must be YYYY-MM-DD"))
		return
	}
	job, err := h.exports.RequestExport(c.Request.Context(), c.Param("id"), date, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Get the status of an export job
// @Tags CourseTables
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{jobId} [get]
func (h *CourseTableHandler) ExportStatus(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "exports disabled"))
		return
	}
	job, err := h.exports.GetJob(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via its signed token
// @Tags CourseTables
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *CourseTableHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "exports disabled"))
		return
	}
	file, relPath, err := h.exports.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	filename := filepath.Base(relPath)
	mimeType := "text/csv"
	if strings.HasSuffix(filename, ".pdf") {
		mimeType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), mimeType, file, nil)
}
