package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/course-search-engine/model"
)

// CourseListRequest holds the pagination parameters of a course listing.
type CourseListRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// UpsertCoursesHandler adds or replaces courses by ID in the background.
// Request Body: a course object or an array of course objects.
func (api *API) UpsertCoursesHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	courses, err := bindCourses(c, true)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateCourses(courses, false); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.UpsertCoursesAsync(catalogName, courses)
	if err != nil {
		SendEngineError(c, "upsert courses", ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":       "accepted",
		"message":      fmt.Sprintf("Course upsert started for catalog '%s' (%d courses)", catalogName, len(courses)),
		"job_id":       jobID,
		"course_count": len(courses),
	})
}

// ReplaceCoursesHandler swaps the whole corpus of a catalog in the background.
// Request Body: an array of course objects; an empty array clears the catalog.
func (api *API) ReplaceCoursesHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	courses, err := bindCourses(c, false)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateCourses(courses, true); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.ReplaceCoursesAsync(catalogName, courses)
	if err != nil {
		SendEngineError(c, "replace courses", ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":       "accepted",
		"message":      fmt.Sprintf("Course replacement started for catalog '%s' (%d courses)", catalogName, len(courses)),
		"job_id":       jobID,
		"course_count": len(courses),
	})
}

// ListCoursesHandler lists the courses of a catalog with pagination
func (api *API) ListCoursesHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	var req CourseListRequest
	if result := ValidateQueryBinding(c, &req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	page, pageSize, result := ValidatePagination(req.Page, req.PageSize)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	catalog, err := api.engine.GetCatalog(catalogName)
	if err != nil {
		SendEngineError(c, "list courses", ErrorCodeInternalError, err)
		return
	}

	courses, total := catalog.ListCourses(page, pageSize)
	c.JSON(http.StatusOK, gin.H{
		"courses":   courses,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"pages":     (total + pageSize - 1) / pageSize,
	})
}

// GetCourseHandler retrieves a specific course by ID
func (api *API) GetCourseHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	courseID := c.Param("courseId")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateCourseID(courseID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	catalog, err := api.engine.GetCatalog(catalogName)
	if err != nil {
		SendEngineError(c, "get course", ErrorCodeInternalError, err)
		return
	}
	course, err := catalog.GetCourse(courseID)
	if err != nil {
		SendEngineError(c, "get course", ErrorCodeInternalError, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DeleteCourseHandler deletes a specific course by ID in the background
func (api *API) DeleteCourseHandler(c *gin.Context) {
	catalogName := c.Param("catalogName")
	courseID := c.Param("courseId")
	if result := ValidateCatalogName(catalogName); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateCourseID(courseID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	jobID, err := api.engine.DeleteCourseAsync(catalogName, courseID)
	if err != nil {
		SendEngineError(c, "delete course", ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "accepted",
		"message":   fmt.Sprintf("Course deletion started for course '%s' in catalog '%s'", courseID, catalogName),
		"job_id":    jobID,
		"course_id": courseID,
	})
}

// bindCourses decodes the request body as an array of courses. When
// allowSingle is set a lone course object is accepted too.
func bindCourses(c *gin.Context, allowSingle bool) ([]model.Course, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	if body[0] == '{' {
		if !allowSingle {
			return nil, fmt.Errorf("expected an array of courses")
		}
		var course model.Course
		if err := json.Unmarshal(body, &course); err != nil {
			return nil, err
		}
		return []model.Course{course}, nil
	}

	var courses []model.Course
	if err := json.Unmarshal(body, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		// "null"
		return nil, fmt.Errorf("expected an array of courses")
	}
	return courses, nil
}
