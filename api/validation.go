// Package api exposes the course search engine over HTTP with gin.
package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/model"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateCatalogName validates a catalog name path parameter
func ValidateCatalogName(catalogName string) *ValidationResult {
	return validatePathParam("catalogName", "Catalog name", catalogName)
}

// ValidateCourseID validates a course ID path parameter
func ValidateCourseID(courseID string) *ValidationResult {
	return validatePathParam("courseId", "Course ID", courseID)
}

func validatePathParam(field, label, value string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if value == "" {
		result.AddError(field, label+" is required")
		return result
	}
	if strings.TrimSpace(value) != value {
		result.AddError(field, label+" cannot have leading or trailing whitespace")
	}
	return result
}

// ValidateCatalogSettings normalizes and validates settings for catalog creation.
// Scoring overrides are checked by the engine against its base configuration.
func ValidateCatalogSettings(settings *config.CatalogSettings) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if settings == nil {
		result.AddError("settings", "Catalog settings are required")
		return result
	}

	settings.ApplyDefaults()
	for _, conflict := range settings.ValidateName() {
		result.AddError("name", conflict)
	}
	return result
}

// ValidateCourses validates a batch of course records. allowEmpty permits an
// empty batch, which is how a whole catalog is cleared.
func ValidateCourses(courses []model.Course, allowEmpty bool) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(courses) == 0 {
		if !allowEmpty {
			result.AddError("courses", "No courses provided")
		}
		return result
	}

	for i, course := range courses {
		if strings.TrimSpace(course.ID) == "" {
			result.AddError(fmt.Sprintf("courses[%d].id", i), "Course must have a non-empty 'id' field")
		}
		if course.Credits < 0 {
			result.AddError(fmt.Sprintf("courses[%d].credits", i), "Credits cannot be negative")
		}
	}
	return result
}

// ValidatePagination applies defaults and the page size ceiling.
func ValidatePagination(page, pageSize int) (int, int, *ValidationResult) {
	result := &ValidationResult{Valid: true}

	if page < 0 {
		result.AddError("page", "Page number cannot be negative")
	}
	if pageSize < 0 {
		result.AddError("page_size", "Page size cannot be negative")
	}

	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, result
}

// ValidateJobStatus parses an optional job status filter.
func ValidateJobStatus(raw string) (*model.JobStatus, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	if raw == "" {
		return nil, result
	}

	status := model.JobStatus(raw)
	switch status {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelled:
		return &status, result
	}
	result.AddError("status", fmt.Sprintf("Unknown job status '%s'", raw))
	return nil, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}
	return result
}

// ValidateQueryBinding validates query parameter binding
func ValidateQueryBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindQuery(target); err != nil {
		result.AddError("query_parameters", "Invalid query parameters: "+err.Error())
	}
	return result
}
