package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-reg-api/internal/models"
	"github.com/noah-isme/course-reg-api/internal/service"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/response"
)

// SearchHandler exposes the section search endpoint.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// SearchRequest carries the student scope plus the section filter.
type SearchRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	models.SectionSearchFilter
}

// Search godoc
// @Summary Search a semester's sections from a student's perspective
// @Tags Sections
// @Accept json
// @Produce json
// @Param id path string true "Semester ID"
// @Param payload body SearchRequest true "Search filter"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id}/sections/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries, err := h.search.Search(c.Request.Context(), req.StudentID, c.Param("id"), req.SectionSearchFilter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
