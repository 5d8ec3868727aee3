package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEnrollmentHandlerEnrollRejectsInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(`{"student_id":"s1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestEnrollmentHandlerDropRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/enrollments/drop", strings.NewReader(`{`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Drop(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseTableHandlerGetRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseTableHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/s1/course-table", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date is required")
}

func TestCourseTableHandlerGetRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseTableHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/s1/course-table?date=15-05-2024", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourseTableHandlerExportsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCourseTableHandler(nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students/s1/course-table/exports", strings.NewReader(`{"date":"2024-05-15","format":"CSV"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.RequestExport(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "exports disabled")
}
