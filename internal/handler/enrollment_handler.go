package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// EnrollmentHandler exposes the enrollment decision endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// EnrollRequest identifies the student and section for enroll/drop operations.
type EnrollRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	SectionID string `json:"section_id" binding:"required"`
}

// Enroll godoc
// @Summary Attempt to enroll a student in a section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body EnrollRequest true "Enroll payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result := h.enrollments.Enroll(c.Request.Context(), req.StudentID, req.SectionID)
	response.JSON(c, http.StatusOK, gin.H{"result": result}, nil)
}

// Drop godoc
// @Summary Drop an active enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body EnrollRequest true "Drop payload"
// @Success 204
// @Router /enrollments/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Drop(c.Request.Context(), req.StudentID, req.SectionID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ForceAdd godoc
// @Summary Administratively enroll a student, bypassing the checks
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.ForceAddRequest true "Force add payload"
// @Success 204
// @Router /enrollments/force-add [post]
func (h *EnrollmentHandler) ForceAdd(c *gin.Context) {
	var req service.ForceAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.ForceAdd(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetGrade godoc
// @Summary Assign a grade to an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SetGradeRequest true "Grade payload"
// @Success 204
// @Router /enrollments/grade [put]
func (h *EnrollmentHandler) SetGrade(c *gin.Context) {
	var req service.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.SetGrade(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
